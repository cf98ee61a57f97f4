package daemon

import (
	"time"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd"

	"github.com/nfd2nfc/nfd2nfc/pkg/daemon"
)

const (
	// restartWaitInterval is the wait period between daemon exit probes.
	restartWaitInterval = 100 * time.Millisecond
	// restartProbeCount is the number of daemon exit probes to perform
	// before giving up on a restart.
	restartProbeCount = 50
)

// restartMain is the entry point for the restart command.
func restartMain(command *cobra.Command, arguments []string) error {
	// Stop any running daemon.
	if err := stopMain(command, arguments); err != nil {
		return err
	}

	// Wait for the old daemon to exit by probing its lock. The lock is only
	// acquirable once the old process is gone.
	stopped := false
	for attempt := 0; attempt < restartProbeCount; attempt++ {
		if lock, err := daemon.AcquireLock(); err == nil {
			lock.Release()
			stopped = true
			break
		}
		time.Sleep(restartWaitInterval)
	}
	if !stopped {
		return errors.New("daemon did not terminate")
	}

	// Start a fresh daemon.
	return startMain(command, arguments)
}

// restartCommand is the restart command.
var restartCommand = &cobra.Command{
	Use:          "restart",
	Short:        "Restart the nfd2nfc daemon",
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
