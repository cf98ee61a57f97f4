package main

import (
	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/pkg/rules"
)

// ignoreMain is the entry point for the ignore command.
func ignoreMain(command *cobra.Command, arguments []string) error {
	// Validate arguments.
	if len(arguments) != 1 {
		return errors.New("exactly one path must be specified")
	}

	// Record the rule.
	return addRule(arguments[0], rules.ActionIgnore, ignoreConfiguration.childrenOnly)
}

// ignoreCommand is the ignore command.
var ignoreCommand = &cobra.Command{
	Use:          "ignore <path>",
	Short:        "Exclude a directory from watching",
	RunE:         ignoreMain,
	SilenceUsage: true,
}

// ignoreConfiguration stores configuration for the ignore command.
var ignoreConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// childrenOnly indicates that the rule should apply to the directory's
	// direct entries only.
	childrenOnly bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := ignoreCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&ignoreConfiguration.help, "help", "h", false, "Show help information")

	// Wire up ignore command flags.
	flags.BoolVar(&ignoreConfiguration.childrenOnly, "children-only", false, "Exclude direct entries only, without descending")
}
