package nfd2nfc

import (
	"fmt"
)

const (
	// VersionMajor represents the current major version of nfd2nfc.
	VersionMajor = 0
	// VersionMinor represents the current minor version of nfd2nfc.
	VersionMinor = 3
	// VersionPatch represents the current patch version of nfd2nfc.
	VersionPatch = 0
	// VersionTag represents a tag to be appended to the nfd2nfc version
	// string. It must not contain spaces. If empty, no tag is appended to the
	// version string.
	VersionTag = ""
)

// Version provides a stringified version of the current nfd2nfc version.
var Version string

// init performs global initialization.
func init() {
	// Compute the stringified version.
	if VersionTag != "" {
		Version = fmt.Sprintf("%d.%d.%d-%s", VersionMajor, VersionMinor, VersionPatch, VersionTag)
	} else {
		Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
	}
}
