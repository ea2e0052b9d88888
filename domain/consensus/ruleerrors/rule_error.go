package ruleerrors

import (
	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrMissingParents indicates a block points to unknown parent(s).
	ErrMissingParents = newRuleError("ErrMissingParents")

	// ErrNoParents indicates a non-genesis block with an empty parents list.
	ErrNoParents = newRuleError("ErrNoParents")

	// ErrKnownInvalid indicates that this block has previously failed
	// validation.
	ErrKnownInvalid = newRuleError("ErrKnownInvalid")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block failed due to one of the many validation
// rules. It has full support for errors.Is and errors.As, so the
// specific reason can be detected by the caller.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

// Is returns whether target is a RuleError with the same identifying
// message, regardless of what it wraps. This makes errors.Is match
// wrapped instances against the sentinel values above.
func (e RuleError) Is(target error) bool {
	t, ok := target.(RuleError)
	if !ok {
		return false
	}
	return e.message == t.message
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// IsRuleError returns whether err is (or wraps) a RuleError. Errors
// that are rule errors indicate a problem with the submitted block,
// rather than a programming or database fault.
func IsRuleError(err error) bool {
	var ruleError RuleError
	return errors.As(err, &ruleError)
}

// Errorf formats according to a format specifier and returns the string
// as a RuleError wrapping the given rule error.
func Errorf(ruleErr RuleError, format string, args ...interface{}) error {
	return errors.WithStack(RuleError{
		message: ruleErr.message,
		inner:   errors.Errorf(format, args...),
	})
}

// Wrapf wraps the given error inside a RuleError with the given format.
func Wrapf(ruleErr RuleError, err error, format string, args ...interface{}) error {
	return errors.WithStack(RuleError{
		message: ruleErr.message,
		inner:   errors.Wrapf(err, format, args...),
	})
}
