package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd"
	"github.com/nfd2nfc/nfd2nfc/cmd/nfd2nfc/daemon"

	watchingsvc "github.com/nfd2nfc/nfd2nfc/pkg/service/watching"
)

// reloadMain is the entry point for the reload command.
func reloadMain(command *cobra.Command, arguments []string) error {
	// Connect to the daemon without triggering autostart. The daemon reloads
	// rules on its own when it starts, so an explicit reload only makes sense
	// against a running daemon.
	client, err := daemon.Connect(false, true)
	if err != nil {
		return errors.Wrap(err, "unable to connect to daemon")
	}
	defer client.Close()

	// Perform the reload.
	if err := watchingsvc.Reload(client); err != nil {
		return errors.Wrap(err, "unable to reload rules")
	}

	// Print a confirmation.
	fmt.Println("Rules reloaded")

	// Success.
	return nil
}

// reloadCommand is the reload command.
var reloadCommand = &cobra.Command{
	Use:          "reload",
	Short:        "Force the daemon to reload the rule file",
	Args:         cmd.DisallowArguments,
	RunE:         reloadMain,
	SilenceUsage: true,
}

// reloadConfiguration stores configuration for the reload command.
var reloadConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := reloadCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&reloadConfiguration.help, "help", "h", false, "Show help information")
}
