package filesystem

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// DataDirectoryName is the name of the global nfd2nfc data directory
	// inside the user's home directory.
	DataDirectoryName = ".nfd2nfc"

	// DaemonDirectoryName is the name of the daemon storage directory within
	// the nfd2nfc data directory.
	DaemonDirectoryName = "daemon"

	// RuleFileName is the name of the persisted watch rule file within the
	// nfd2nfc data directory.
	RuleFileName = "rules.toml"
)

// DataPath computes (and optionally creates) subdirectories inside the nfd2nfc
// data directory.
func DataPath(create bool, pathComponents ...string) (string, error) {
	// Compute the path to the user's home directory.
	homeDirectory, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "unable to compute path to home directory")
	}

	// Compute the path to the nfd2nfc data directory.
	dataDirectoryPath := filepath.Join(homeDirectory, DataDirectoryName)

	// Compute the target path.
	result := filepath.Join(dataDirectoryPath, filepath.Join(pathComponents...))

	// If requested, attempt to create the directory containing the target
	// path. The last path component is assumed to be a file or directory name
	// managed by the caller.
	if create {
		if err := os.MkdirAll(filepath.Dir(result), 0700); err != nil {
			return "", errors.Wrap(err, "unable to create data directory")
		}
	}

	// Success.
	return result, nil
}

// RuleFilePath computes the path to the persisted watch rule file, creating
// any intermediate directories as necessary. The NFD2NFC_RULES environment
// variable overrides the default location.
func RuleFilePath() (string, error) {
	if override := os.Getenv("NFD2NFC_RULES"); override != "" {
		return override, nil
	}
	return DataPath(true, RuleFileName)
}
