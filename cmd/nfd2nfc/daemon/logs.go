package daemon

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/cmd"

	"github.com/nfd2nfc/nfd2nfc/pkg/daemon"
)

// logsMain is the entry point for the logs command.
func logsMain(command *cobra.Command, arguments []string) error {
	// Compute the log path.
	logPath, err := daemon.LogPath()
	if err != nil {
		return errors.Wrap(err, "unable to compute log path")
	}

	// Open the current log file. An absent file simply means the daemon
	// hasn't logged anything yet.
	file, err := os.Open(logPath)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Wrap(err, "unable to open log file")
	}
	defer file.Close()

	// Collect lines, retaining only the most recent when a limit is set.
	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if logsConfiguration.lines > 0 && len(lines) > logsConfiguration.lines {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "unable to read log file")
	}

	// Print the retained lines.
	for _, line := range lines {
		fmt.Println(line)
	}

	// Success.
	return nil
}

// logsCommand is the logs command.
var logsCommand = &cobra.Command{
	Use:          "logs",
	Short:        "Show recent nfd2nfc daemon log output",
	Args:         cmd.DisallowArguments,
	RunE:         logsMain,
	SilenceUsage: true,
}

// logsConfiguration stores configuration for the logs command.
var logsConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// lines is the maximum number of trailing log lines to show, with 0
	// meaning unlimited.
	lines int
}

func init() {
	// Grab a handle for the command line flags.
	flags := logsCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&logsConfiguration.help, "help", "h", false, "Show help information")

	// Wire up logs command flags.
	flags.IntVarP(&logsConfiguration.lines, "lines", "n", 200, "Maximum number of trailing lines to show (0 for all)")
}
