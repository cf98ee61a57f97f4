package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	// Compute a rule file path.
	path := filepath.Join(t.TempDir(), "rules.toml")

	// Save a rule set.
	original := &RuleSet{
		Enabled: true,
		Rules: []Rule{
			{Path: "/watched", Action: ActionWatch, Mode: ModeRecursive},
			{Path: "/watched/excluded", Action: ActionIgnore, Mode: ModeRecursive},
			{Path: "/shallow", Action: ActionWatch, Mode: ModeChildrenOnly},
		},
	}
	if err := Save(path, original); err != nil {
		t.Fatal("unable to save rule set:", err)
	}

	// Reload and verify.
	reloaded, err := Load(path)
	if err != nil {
		t.Fatal("unable to load rule set:", err)
	}
	if !reloaded.Enabled {
		t.Error("enabled flag not preserved")
	}
	if len(reloaded.Rules) != len(original.Rules) {
		t.Fatalf("rule count incorrect: %d != %d", len(reloaded.Rules), len(original.Rules))
	}
	for index, rule := range reloaded.Rules {
		if rule != original.Rules[index] {
			t.Errorf("rule %d not preserved: %v != %v", index, rule, original.Rules[index])
		}
	}
}

func TestLoadMissing(t *testing.T) {
	// Load from a non-existent path and verify an empty rule set results.
	ruleSet, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal("unexpected error loading missing rule file:", err)
	}
	if len(ruleSet.Rules) != 0 || ruleSet.Enabled {
		t.Error("missing rule file did not yield empty rule set")
	}
}

func TestLoadMalformed(t *testing.T) {
	// Write garbage and verify that loading yields a ConfigError.
	path := filepath.Join(t.TempDir(), "rules.toml")
	if err := os.WriteFile(path, []byte("version = }{"), 0600); err != nil {
		t.Fatal("unable to write rule file:", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error loading malformed rule file")
	} else if !IsConfigError(err) {
		t.Error("error is not a ConfigError:", err)
	}
}

func TestLoadIncompatibleVersion(t *testing.T) {
	// Write a rule file with an unsupported schema version and verify
	// rejection rather than guesswork.
	path := filepath.Join(t.TempDir(), "rules.toml")
	if err := os.WriteFile(path, []byte("version = 99\n"), 0600); err != nil {
		t.Fatal("unable to write rule file:", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error loading incompatible rule file")
	} else if !IsConfigError(err) {
		t.Error("error is not a ConfigError:", err)
	}
}
