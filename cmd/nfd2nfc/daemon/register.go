package daemon

import (
	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd"

	"github.com/nfd2nfc/nfd2nfc/pkg/daemon"
)

// registerMain is the entry point for the register command.
func registerMain(command *cobra.Command, arguments []string) error {
	if err := daemon.Register(); err != nil {
		return errors.Wrap(err, "unable to register daemon")
	}
	return nil
}

// registerCommand is the register command.
var registerCommand = &cobra.Command{
	Use:          "register",
	Short:        "Register the nfd2nfc daemon to start automatically on login",
	Args:         cmd.DisallowArguments,
	RunE:         registerMain,
	SilenceUsage: true,
}

// registerConfiguration stores configuration for the register command.
var registerConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := registerCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&registerConfiguration.help, "help", "h", false, "Show help information")
}
