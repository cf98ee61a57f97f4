package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd"

	"github.com/nfd2nfc/nfd2nfc/pkg/filesystem"
	"github.com/nfd2nfc/nfd2nfc/pkg/rules"
)

// addRule appends a rule built from a raw user-provided path to the persisted
// rule set and enables watching. It warns (but does not fail) when the rule's
// advisory validation indicates a problem, since rules may legitimately name
// paths that don't exist yet.
func addRule(path string, action rules.Action, childrenOnly bool) error {
	// Determine the descent mode.
	mode := rules.ModeRecursive
	if childrenOnly {
		mode = rules.ModeChildrenOnly
	}

	// Construct the rule.
	rule, err := rules.NewRule(path, action, mode)
	if err != nil {
		return errors.Wrap(err, "unable to construct rule")
	}

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

	// Append the rule and enable watching. Adding a rule expresses intent to
	// watch, so the daemon is (re)enabled as a side effect.
	ruleSet.Rules = append(ruleSet.Rules, rule)
	ruleSet.Enabled = true

	// Save the updated rule set. The daemon picks up the change on its own.
	if err := rules.Save(rulePath, ruleSet); err != nil {
		return errors.Wrap(err, "unable to save rules")
	}

	// Print the recorded rule.
	fmt.Println("Added rule:", rule)

	// Perform advisory validation of the new rule and warn about anything
	// suspicious.
	validations := rules.ValidateAll(ruleSet.Rules)
	if validation := validations[len(validations)-1]; validation.Status != rules.StatusActive {
		if validation.Status == rules.StatusRedundant {
			cmd.Warning(fmt.Sprintf(
				"rule is redundant: already covered by %s",
				ruleSet.Rules[validation.CoveredBy],
			))
		} else {
			cmd.Warning(fmt.Sprintf("rule path is %s", validation.Status))
		}
	}

	// Success.
	return nil
}

// watchMain is the entry point for the watch command.
func watchMain(command *cobra.Command, arguments []string) error {
	// Validate arguments.
	if len(arguments) != 1 {
		return errors.New("exactly one path must be specified")
	}

	// Record the rule.
	return addRule(arguments[0], rules.ActionWatch, watchConfiguration.childrenOnly)
}

// watchCommand is the watch command.
var watchCommand = &cobra.Command{
	Use:          "watch <path>",
	Short:        "Add a directory to the watched set",
	RunE:         watchMain,
	SilenceUsage: true,
}

// watchConfiguration stores configuration for the watch command.
var watchConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// childrenOnly indicates that the rule should apply to the directory's
	// direct entries only.
	childrenOnly bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := watchCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&watchConfiguration.help, "help", "h", false, "Show help information")

	// Wire up watch command flags.
	flags.BoolVar(&watchConfiguration.childrenOnly, "children-only", false, "Watch direct entries only, without descending")
}
