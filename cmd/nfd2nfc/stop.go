package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd"
	"github.com/nfd2nfc/nfd2nfc/cmd/nfd2nfc/daemon"

	watchingsvc "github.com/nfd2nfc/nfd2nfc/pkg/service/watching"
)

// stopMain is the entry point for the stop command.
func stopMain(command *cobra.Command, arguments []string) error {
	// Connect to the daemon without triggering autostart. If the daemon isn't
	// running, there's nothing to stop.
	client, err := daemon.Connect(false, true)
	if err != nil {
		return errors.Wrap(err, "unable to connect to daemon")
	}
	defer client.Close()

	// Stop watching.
	if err := watchingsvc.Stop(client); err != nil {
		return errors.Wrap(err, "unable to stop watching")
	}

	// Print a confirmation.
	fmt.Println("Watching stopped")

	// Success.
	return nil
}

// stopCommand is the stop command.
var stopCommand = &cobra.Command{
	Use:          "stop",
	Short:        "Stop watching",
	Args:         cmd.DisallowArguments,
	RunE:         stopMain,
	SilenceUsage: true,
}

// stopConfiguration stores configuration for the stop command.
var stopConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := stopCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&stopConfiguration.help, "help", "h", false, "Show help information")
}
