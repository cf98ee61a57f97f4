package daemon

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd"

	daemonsvc "github.com/nfd2nfc/nfd2nfc/pkg/service/daemon"
	watchingsvc "github.com/nfd2nfc/nfd2nfc/pkg/service/watching"
)

// statusMain is the entry point for the status command.
func statusMain(command *cobra.Command, arguments []string) error {
	// Connect to the daemon without triggering autostart. If the daemon isn't
	// running, that's the status.
	client, err := Connect(false, false)
	if err != nil {
		return errors.Wrap(err, "unable to connect to daemon")
	}
	defer client.Close()

	// Query the daemon version.
	version, err := daemonsvc.Version(client)
	if err != nil {
		return errors.Wrap(err, "unable to query daemon version")
	}

	// Query the watching engine status.
	status, _, err := watchingsvc.Status(client, 0)
	if err != nil {
		return errors.Wrap(err, "unable to query watching status")
	}

	// Print the results.
	fmt.Println("Daemon version:", version)
	fmt.Println("Watching:", status)

	// Success.
	return nil
}

// statusCommand is the status command.
var statusCommand = &cobra.Command{
	Use:          "status",
	Short:        "Show the nfd2nfc daemon status",
	Args:         cmd.DisallowArguments,
	RunE:         statusMain,
	SilenceUsage: true,
}

// statusConfiguration stores configuration for the status command.
var statusConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := statusCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&statusConfiguration.help, "help", "h", false, "Show help information")
}
