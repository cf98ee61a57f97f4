package nfd2nfc

import (
	"os"
)

// DebugEnabled indicates whether or not debugging is enabled for nfd2nfc. It
// is set automatically based on the NFD2NFC_DEBUG environment variable.
var DebugEnabled bool

// init performs global initialization.
func init() {
	// Check whether or not debugging should be enabled.
	DebugEnabled = os.Getenv("NFD2NFC_DEBUG") == "1"
}
