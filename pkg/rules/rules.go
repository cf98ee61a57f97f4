// Package rules implements the persisted watch rule model: the declarative
// set of directories to watch or ignore, its on-disk storage, validation, and
// resolution into a concrete set of filesystem subscriptions.
package rules

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/nfd2nfc/nfd2nfc/pkg/filesystem"
	"github.com/nfd2nfc/nfd2nfc/pkg/normalization"
)

// Action indicates whether a rule includes or excludes its path from
// watching.
type Action uint8

const (
	// ActionWatch indicates that a path should be watched.
	ActionWatch Action = iota
	// ActionIgnore indicates that a path should be excluded from watching.
	// An ignore rule only has effect inside an enclosing watch root.
	ActionIgnore
)

// String provides a human-readable representation of an action.
func (a Action) String() string {
	switch a {
	case ActionWatch:
		return "watch"
	case ActionIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.MarshalText.
func (a Action) MarshalText() ([]byte, error) {
	switch a {
	case ActionWatch, ActionIgnore:
		return []byte(a.String()), nil
	default:
		return nil, errors.New("unknown action")
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.UnmarshalText.
func (a *Action) UnmarshalText(text []byte) error {
	switch string(text) {
	case "watch":
		*a = ActionWatch
	case "ignore":
		*a = ActionIgnore
	default:
		return errors.Errorf("unknown action: %q", string(text))
	}
	return nil
}

// Mode indicates how far a rule's effect descends below its path.
type Mode uint8

const (
	// ModeRecursive indicates that a rule applies to the path and everything
	// beneath it.
	ModeRecursive Mode = iota
	// ModeChildrenOnly indicates that a rule applies to the path's direct
	// entries only, without descending further.
	ModeChildrenOnly
)

// String provides a human-readable representation of a mode.
func (m Mode) String() string {
	switch m {
	case ModeRecursive:
		return "recursive"
	case ModeChildrenOnly:
		return "children"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.MarshalText.
func (m Mode) MarshalText() ([]byte, error) {
	switch m {
	case ModeRecursive, ModeChildrenOnly:
		return []byte(m.String()), nil
	default:
		return nil, errors.New("unknown mode")
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.UnmarshalText.
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "recursive":
		*m = ModeRecursive
	case "children":
		*m = ModeChildrenOnly
	default:
		return errors.Errorf("unknown mode: %q", string(text))
	}
	return nil
}

// Rule is a declarative statement that a path should be watched or excluded,
// with a descent mode. Paths are stored absolute and in composed (NFC) form.
type Rule struct {
	// Path is the absolute directory path the rule applies to.
	Path string `toml:"path"`
	// Action indicates whether the path is watched or ignored.
	Action Action `toml:"action"`
	// Mode indicates how far the rule's effect descends.
	Mode Mode `toml:"mode"`
}

// String provides a human-readable representation of a rule.
func (r Rule) String() string {
	return fmt.Sprintf("%s %s (%s)", r.Action, r.Path, r.Mode)
}

// NewRule constructs a rule from a raw user-provided path, expanding tildes,
// absolutizing, and converting the stored path to composed form.
func NewRule(path string, action Action, mode Mode) (Rule, error) {
	normalized, err := filesystem.Normalize(path)
	if err != nil {
		return Rule{}, errors.Wrap(err, "unable to normalize rule path")
	}
	return Rule{
		Path:   normalization.Compose(normalized),
		Action: action,
		Mode:   mode,
	}, nil
}

// RuleSet is the ordered sequence of watch rules plus the desired
// daemon-enabled flag. Order only matters as a tie-break when two rules apply
// to the exact same path, in which case the last-defined rule wins.
type RuleSet struct {
	// Version is the rule file schema version.
	Version int `toml:"version"`
	// Enabled indicates whether the daemon should keep the event pipeline
	// alive. It records desired state only; actual state is always observed
	// at runtime.
	Enabled bool `toml:"enabled"`
	// Rules is the ordered rule sequence.
	Rules []Rule `toml:"rules"`
}

// ConfigError indicates that the persisted rule file is malformed or uses an
// incompatible schema version. Consumers should surface it and continue with
// their last-good rule set, never invent rules.
type ConfigError struct {
	// Path is the rule file path.
	Path string
	// Cause is the underlying failure.
	Cause error
}

// Error implements error.Error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid rule file %s: %v", e.Path, e.Cause)
}

// Unwrap supports error chain inspection.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// IsConfigError indicates whether or not an error (or any error in its chain)
// is a rule file configuration error.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}
