package version

import "fmt"

// validCharacters is a list of characters valid in the appBuild string
const validCharacters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0
)

// appBuild is defined as a variable so it can be overridden through the
// -ldflags option of the go build command.
var appBuild string

var version = "" // string used for memoization of version

// Version returns the application version as a properly formed string
func Version() string {
	if version == "" {
		// Start with the major, minor, and patch versions.
		version = fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)

		// Append build metadata if there is any.
		// Panic if any invalid characters are encountered.
		if appBuild != "" {
			checkAppBuild(appBuild)

			version = fmt.Sprintf("%s-%s", version, appBuild)
		}
	}

	return version
}

// checkAppBuild verifies that the appBuild string only contains
// characters from validCharacters. Since appBuild comes from
// a linker flag this is a developer error, so panic.
func checkAppBuild(appBuild string) {
	for _, r := range appBuild {
		if !containsRune(validCharacters, r) {
			panic(fmt.Errorf("appBuild string (%s) contains forbidden characters. Only alphanumeric characters and dashes are allowed", appBuild))
		}
	}
}

func containsRune(s string, r rune) bool {
	for _, x := range s {
		if x == r {
			return true
		}
	}
	return false
}
