package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd"
	"github.com/nfd2nfc/nfd2nfc/cmd/nfd2nfc/daemon"

	watchingsvc "github.com/nfd2nfc/nfd2nfc/pkg/service/watching"
)

// statusMain is the entry point for the status command.
func statusMain(command *cobra.Command, arguments []string) error {
	// Connect to the daemon without triggering autostart. A stopped daemon is
	// itself meaningful status.
	client, err := daemon.Connect(false, true)
	if err != nil {
		return errors.Wrap(err, "unable to connect to daemon")
	}
	defer client.Close()

	// Perform an initial query.
	status, stateIndex, err := watchingsvc.Status(client, 0)
	if err != nil {
		return errors.Wrap(err, "unable to query status")
	}
	fmt.Println("Watching:", status)

	// If we're not monitoring, then we're done.
	if !statusConfiguration.monitor {
		return nil
	}

	// Loop and print on each state change. Each query long-polls until the
	// daemon's state index advances past the one we last saw.
	for {
		status, stateIndex, err = watchingsvc.Status(client, stateIndex)
		if err != nil {
			return errors.Wrap(err, "unable to query status")
		}
		fmt.Println("Watching:", status)
	}
}

// statusCommand is the status command.
var statusCommand = &cobra.Command{
	Use:          "status",
	Short:        "Show watching status",
	Args:         cmd.DisallowArguments,
	RunE:         statusMain,
	SilenceUsage: true,
}

// statusConfiguration stores configuration for the status command.
var statusConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// monitor indicates that the command should continue to print status as
	// it changes rather than exiting after the first query.
	monitor bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := statusCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&statusConfiguration.help, "help", "h", false, "Show help information")

	// Wire up status command flags.
	flags.BoolVar(&statusConfiguration.monitor, "monitor", false, "Continuously print status as it changes")
}
