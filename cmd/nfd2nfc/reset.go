package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd"

	"github.com/nfd2nfc/nfd2nfc/pkg/filesystem"
	"github.com/nfd2nfc/nfd2nfc/pkg/rules"
)

// resetMain is the entry point for the reset command.
func resetMain(command *cobra.Command, arguments []string) error {
	// Compute the rule file path.
	rulePath, err := filesystem.RuleFilePath()
	if err != nil {
		return errors.Wrap(err, "unable to compute rule file path")
	}

	// Load the existing rule set. The enabled flag is preserved, reset only
	// clears rules.
	ruleSet, err := rules.Load(rulePath)
	if err != nil {
		return errors.Wrap(err, "unable to load rules")
	}
	ruleSet.Rules = nil

	// Save the updated rule set.
	if err := rules.Save(rulePath, ruleSet); err != nil {
		return errors.Wrap(err, "unable to save rules")
	}

	// Print a confirmation.
	fmt.Println("Removed all rules")

	// Success.
	return nil
}

// resetCommand is the reset command.
var resetCommand = &cobra.Command{
	Use:          "reset",
	Short:        "Remove all watch rules",
	Args:         cmd.DisallowArguments,
	RunE:         resetMain,
	SilenceUsage: true,
}

// resetConfiguration stores configuration for the reset command.
var resetConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := resetCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&resetConfiguration.help, "help", "h", false, "Show help information")
}
