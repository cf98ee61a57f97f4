package daemon

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd"

	"github.com/nfd2nfc/nfd2nfc/pkg/daemon"
	"github.com/nfd2nfc/nfd2nfc/pkg/filesystem"
	"github.com/nfd2nfc/nfd2nfc/pkg/ipc"
	"github.com/nfd2nfc/nfd2nfc/pkg/logging"
	"github.com/nfd2nfc/nfd2nfc/pkg/nfd2nfc"
	"github.com/nfd2nfc/nfd2nfc/pkg/rpc"
	daemonsvc "github.com/nfd2nfc/nfd2nfc/pkg/service/daemon"
	watchingsvc "github.com/nfd2nfc/nfd2nfc/pkg/service/watching"
	"github.com/nfd2nfc/nfd2nfc/pkg/supervisor"
)

// runMain is the entry point for the run command.
func runMain(_ *cobra.Command, _ []string) error {
	// Attempt to acquire the daemon lock and defer its release.
	lock, err := daemon.AcquireLock()
	if err != nil {
		return errors.Wrap(err, "unable to acquire daemon lock")
	}
	defer lock.Release()

	// Route log output to the rotating daemon log alongside standard error,
	// which the host service manager may itself capture.
	logWriter, err := daemon.NewLogWriter()
	if err != nil {
		return errors.Wrap(err, "unable to create daemon log")
	}
	defer logWriter.Close()
	logging.SetOutput(io.MultiWriter(os.Stderr, logWriter))

	// Raise log verbosity if debugging was requested via the environment.
	if nfd2nfc.DebugEnabled {
		logging.SetLevel(logging.LevelDebug)
	}

	// Create a channel to track termination signals. We do this before
	// creating and starting other infrastructure so that things terminate
	// smoothly, not mid-initialization.
	signalTermination := make(chan os.Signal, 1)
	signal.Notify(signalTermination, cmd.TerminationSignals...)

	// Create the supervisor and run it, deferring its shutdown.
	rulePath, err := filesystem.RuleFilePath()
	if err != nil {
		return errors.Wrap(err, "unable to compute rule file path")
	}
	watchSupervisor := supervisor.New(rulePath, logging.RootLogger.Sublogger("watching"))
	supervisorContext, cancelSupervisor := context.WithCancel(context.Background())
	defer cancelSupervisor()
	supervisorErrors := make(chan error, 1)
	go func() {
		supervisorErrors <- watchSupervisor.Run(supervisorContext)
	}()

	// Create the control server and register services.
	server := rpc.NewServer()
	daemonService, termination := daemonsvc.NewService()
	server.Register(daemonService)
	server.Register(watchingsvc.NewService(watchSupervisor))

	// Create the control endpoint listener and defer its closure.
	endpoint, err := daemon.EndpointPath()
	if err != nil {
		return errors.Wrap(err, "unable to compute endpoint path")
	}
	listener, err := ipc.NewListener(endpoint)
	if err != nil {
		return errors.Wrap(err, "unable to create daemon listener")
	}
	defer listener.Close()

	// Serve incoming connections in a separate Goroutine, watching for
	// serving failure.
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Serve(listener)
	}()

	logging.RootLogger.Infof("daemon %s running", nfd2nfc.Version)

	// Wait for termination from a signal, the daemon service, the
	// supervisor, or the control server. Termination via the daemon service
	// is a non-error.
	select {
	case sig := <-signalTermination:
		return errors.Errorf("terminated by signal: %s", sig)
	case <-termination:
		return nil
	case err = <-supervisorErrors:
		return errors.Wrap(err, "supervisor termination")
	case err = <-serverErrors:
		return errors.Wrap(err, "daemon server termination")
	}
}

// runCommand is the run command.
var runCommand = &cobra.Command{
	Use:          "run",
	Short:        "Run the nfd2nfc daemon",
	Args:         cmd.DisallowArguments,
	Hidden:       true,
	RunE:         runMain,
	SilenceUsage: true,
}

// runConfiguration stores configuration for the run command.
var runConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := runCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&runConfiguration.help, "help", "h", false, "Show help information")
}
