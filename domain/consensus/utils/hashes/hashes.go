package hashes

import (
	"hash"

	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// HashWriter is used to incrementally hash data without concatenating
// all of the data to a single buffer. It must be created via NewHashWriter
type HashWriter struct {
	hash.Hash
}

// NewHashWriter returns a new HashWriter
func NewHashWriter() *HashWriter {
	blake, err := blake2b.New256(nil)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. blake2b.New256 with nil key should never return an error"))
	}

	return &HashWriter{blake}
}

// InfallibleWrite is just like write but doesn't return anything
func (h *HashWriter) InfallibleWrite(p []byte) {
	// This write can never return an error, this is part of the hash.Hash interface contract.
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. hash.Hash interface promises to not return errors"))
	}
}

// Finalize returns the resulting hash
func (h *HashWriter) Finalize() *externalapi.DomainHash {
	var sum [externalapi.DomainHashSize]byte
	// This should prevent `h.Sum` from allocating an output buffer
	_ = h.Sum(sum[:0])
	return externalapi.NewDomainHashFromByteArray(&sum)
}
