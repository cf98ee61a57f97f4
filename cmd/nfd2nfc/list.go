package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd"

	"github.com/nfd2nfc/nfd2nfc/pkg/filesystem"
	"github.com/nfd2nfc/nfd2nfc/pkg/rules"
)

// listMain is the entry point for the list command.
func listMain(command *cobra.Command, arguments []string) error {
	// Compute the rule file path.
	rulePath, err := filesystem.RuleFilePath()
	if err != nil {
		return errors.Wrap(err, "unable to compute rule file path")
	}

	// Load the rule set.
	ruleSet, err := rules.Load(rulePath)
	if err != nil {
		return errors.Wrap(err, "unable to load rules")
	}

	// Print the enabled flag.
	if ruleSet.Enabled {
		fmt.Println("Watching: enabled")
	} else {
		fmt.Println("Watching: disabled")
	}

	// Handle the trivial case.
	if len(ruleSet.Rules) == 0 {
		fmt.Println("No rules defined")
		return nil
	}

	// Validate and print each rule. Validation here is advisory, the daemon
	// tolerates rules for paths that don't exist yet.
	validations := rules.ValidateAll(ruleSet.Rules)
	for r, rule := range ruleSet.Rules {
		validation := validations[r]
		if validation.Status == rules.StatusRedundant {
			fmt.Printf("%d: %s [redundant, covered by rule %d]\n", r, rule, validation.CoveredBy)
		} else if validation.Status != rules.StatusActive {
			fmt.Printf("%d: %s [%s]\n", r, rule, validation.Status)
		} else {
			fmt.Printf("%d: %s\n", r, rule)
		}
	}

	// Success.
	return nil
}

// listCommand is the list command.
var listCommand = &cobra.Command{
	Use:          "list",
	Short:        "List watch rules and their status",
	Args:         cmd.DisallowArguments,
	RunE:         listMain,
	SilenceUsage: true,
}

// listConfiguration stores configuration for the list command.
var listConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := listCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&listConfiguration.help, "help", "h", false, "Show help information")
}
