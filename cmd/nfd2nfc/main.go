package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd/nfd2nfc/daemon"
)

// rootMain is the entry point for the root command.
func rootMain(command *cobra.Command, arguments []string) error {
	// If no commands were given, then print help information and bail. We
	// don't have to worry about warning about arguments being present here
	// (which would be incorrect usage) because arguments can't even reach
	// this point (they will be mistaken for subcommands and an error will be
	// displayed).
	command.Help()

	// Success.
	return nil
}

// rootCommand is the root command.
var rootCommand = &cobra.Command{
	Use:          "nfd2nfc",
	Short:        "Keep filenames in composed (NFC) Unicode form",
	RunE:         rootMain,
	SilenceUsage: true,
}

// rootConfiguration stores configuration for the root command.
var rootConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := rootCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")

	// Disable Cobra's command sorting. It sorts alphabetically by default.
	cobra.EnableCommandSorting = false

	// Register commands.
	rootCommand.AddCommand(
		watchCommand,
		ignoreCommand,
		removeCommand,
		listCommand,
		resetCommand,
		convertCommand,
		startCommand,
		stopCommand,
		restartCommand,
		statusCommand,
		reloadCommand,
		daemon.RootCommand,
		versionCommand,
	)
}

func main() {
	// Execute the root command.
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
