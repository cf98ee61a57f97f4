package rules

import (
	"os"

	"github.com/pkg/errors"

	"github.com/nfd2nfc/nfd2nfc/pkg/encoding"
)

// Version is the current rule file schema version. Files carrying a different
// version are rejected with a ConfigError rather than interpreted by
// guesswork.
const Version = 1

// Load reads the rule set persisted at the specified path. A missing file
// yields an empty rule set and no error, since that's the normal state of a
// fresh install. Malformed contents or an incompatible schema version yield a
// ConfigError.
func Load(path string) (*RuleSet, error) {
	// Attempt to load. Treat non-existence as an empty rule set.
	result := &RuleSet{}
	if err := encoding.LoadAndUnmarshalTOML(path, result); err != nil {
		if os.IsNotExist(err) {
			return &RuleSet{Version: Version}, nil
		}
		return nil, &ConfigError{Path: path, Cause: err}
	}

	// Enforce schema version compatibility.
	if result.Version != Version {
		return nil, &ConfigError{
			Path:  path,
			Cause: errors.Errorf("incompatible rule file version: %d", result.Version),
		}
	}

	// Success.
	return result, nil
}

// Save persists the rule set atomically (write-temp-then-replace) to the
// specified path, so that a concurrent reader never observes a partially
// written file. The schema version is stamped on save.
func Save(path string, ruleSet *RuleSet) error {
	ruleSet.Version = Version
	return encoding.MarshalAndSaveTOML(path, ruleSet)
}
