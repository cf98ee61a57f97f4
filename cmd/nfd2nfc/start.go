package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd"
	"github.com/nfd2nfc/nfd2nfc/cmd/nfd2nfc/daemon"

	watchingsvc "github.com/nfd2nfc/nfd2nfc/pkg/service/watching"
)

// startMain is the entry point for the start command.
func startMain(command *cobra.Command, arguments []string) error {
	// Connect to the daemon, starting it if necessary.
	client, err := daemon.Connect(true, true)
	if err != nil {
		return errors.Wrap(err, "unable to connect to daemon")
	}
	defer client.Close()

	// Start watching.
	if err := watchingsvc.Start(client); err != nil {
		return errors.Wrap(err, "unable to start watching")
	}

	// Print a confirmation.
	fmt.Println("Watching started")

	// Success.
	return nil
}

// startCommand is the start command.
var startCommand = &cobra.Command{
	Use:          "start",
	Short:        "Start watching",
	Args:         cmd.DisallowArguments,
	RunE:         startMain,
	SilenceUsage: true,
}

// startConfiguration stores configuration for the start command.
var startConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := startCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&startConfiguration.help, "help", "h", false, "Show help information")
}
