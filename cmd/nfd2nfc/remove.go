package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/pkg/filesystem"
	"github.com/nfd2nfc/nfd2nfc/pkg/normalization"
	"github.com/nfd2nfc/nfd2nfc/pkg/rules"
)

// removeMain is the entry point for the remove command.
func removeMain(command *cobra.Command, arguments []string) error {
	// Validate arguments.
	if len(arguments) != 1 {
		return errors.New("exactly one path must be specified")
	}

	// Normalize the target path the same way rules are stored, so that
	// matching is insensitive to tildes, relative paths, and decomposition.
	normalized, err := filesystem.Normalize(arguments[0])
	if err != nil {
		return errors.Wrap(err, "unable to normalize path")
	}
	target := normalization.Compose(normalized)

	// Compute the rule file path.
	rulePath, err := filesystem.RuleFilePath()
	if err != nil {
		return errors.Wrap(err, "unable to compute rule file path")
	}

	// Load the existing rule set.
	ruleSet, err := rules.Load(rulePath)
	if err != nil {
		return errors.Wrap(err, "unable to load rules")
	}

	// Filter out all rules at the target path.
	var kept []rules.Rule
	removed := 0
	for _, rule := range ruleSet.Rules {
		if rule.Path == target {
			removed++
		} else {
			kept = append(kept, rule)
		}
	}
	if removed == 0 {
		return errors.Errorf("no rules match %s", target)
	}
	ruleSet.Rules = kept

	// Save the updated rule set.
	if err := rules.Save(rulePath, ruleSet); err != nil {
		return errors.Wrap(err, "unable to save rules")
	}

	// Print a summary.
	if removed == 1 {
		fmt.Println("Removed 1 rule")
	} else {
		fmt.Printf("Removed %d rules\n", removed)
	}

	// Success.
	return nil
}

// removeCommand is the remove command.
var removeCommand = &cobra.Command{
	Use:          "remove <path>",
	Short:        "Remove all rules for a directory",
	RunE:         removeMain,
	SilenceUsage: true,
}

// removeConfiguration stores configuration for the remove command.
var removeConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := removeCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&removeConfiguration.help, "help", "h", false, "Show help information")
}
