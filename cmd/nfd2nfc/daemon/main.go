// Package daemon provides the daemon process lifecycle commands.
package daemon

import (
	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/pkg/daemon"
)

// rootMain is the entry point for the daemon command.
func rootMain(command *cobra.Command, _ []string) error {
	// If no subcommand was given, print help information and bail. Arguments
	// can't reach this point because they'd be mistaken for subcommands and
	// rejected.
	command.Help()
	return nil
}

// RootCommand is the daemon command.
var RootCommand = &cobra.Command{
	Use:          "daemon",
	Short:        "Control the lifecycle of the nfd2nfc daemon",
	RunE:         rootMain,
	SilenceUsage: true,
}

// rootConfiguration stores configuration for the daemon command.
var rootConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := RootCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")

	// Compute supported commands. This has to be done in advance since
	// AddCommand can't be invoked twice.
	supportedCommands := []*cobra.Command{
		runCommand,
		startCommand,
		stopCommand,
		restartCommand,
		statusCommand,
		logsCommand,
	}
	if daemon.RegistrationSupported {
		supportedCommands = append(supportedCommands,
			registerCommand,
			unregisterCommand,
		)
	}

	// Register commands.
	RootCommand.AddCommand(supportedCommands...)
}
