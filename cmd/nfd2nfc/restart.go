package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd"
	"github.com/nfd2nfc/nfd2nfc/cmd/nfd2nfc/daemon"

	watchingsvc "github.com/nfd2nfc/nfd2nfc/pkg/service/watching"
)

// restartMain is the entry point for the restart command.
func restartMain(command *cobra.Command, arguments []string) error {
	// Connect to the daemon, starting it if necessary.
	client, err := daemon.Connect(true, true)
	if err != nil {
		return errors.Wrap(err, "unable to connect to daemon")
	}
	defer client.Close()

	// Restart watching.
	if err := watchingsvc.Restart(client); err != nil {
		return errors.Wrap(err, "unable to restart watching")
	}

	// Print a confirmation.
	fmt.Println("Watching restarted")

	// Success.
	return nil
}

// restartCommand is the restart command.
var restartCommand = &cobra.Command{
	Use:          "restart",
	Short:        "Restart watching",
	Args:         cmd.DisallowArguments,
	RunE:         restartMain,
	SilenceUsage: true,
}

// restartConfiguration stores configuration for the restart command.
var restartConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := restartCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&restartConfiguration.help, "help", "h", false, "Show help information")
}
