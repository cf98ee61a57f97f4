package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"github.com/nfd2nfc/nfd2nfc/pkg/filesystem"
	"github.com/nfd2nfc/nfd2nfc/pkg/logging"
	"github.com/nfd2nfc/nfd2nfc/pkg/normalization"
)

// convertMain is the entry point for the convert command.
func convertMain(command *cobra.Command, arguments []string) error {
	// Validate arguments.
	if len(arguments) != 1 {
		return errors.New("exactly one path must be specified")
	}

	// Normalize the conversion root.
	root, err := filesystem.Normalize(arguments[0])
	if err != nil {
		return errors.Wrap(err, "unable to normalize path")
	}

	// Determine the target form.
	target := normalization.FormComposed
	if convertConfiguration.decompose {
		target = normalization.FormDecomposed
	}

	// Perform the conversion pass.
	result, err := normalization.ConvertTree(
		root,
		!convertConfiguration.nonRecursive,
		target,
		logging.RootLogger.Sublogger("convert"),
	)
	if err != nil {
		return errors.Wrap(err, "unable to convert tree")
	}

	// Print a summary.
	fmt.Printf(
		"Converted %d entries (%d conflicts, %d errors)\n",
		result.Converted, result.Conflicts, result.Errored,
	)

	// Success.
	return nil
}

// convertCommand is the convert command.
var convertCommand = &cobra.Command{
	Use:          "convert <path>",
	Short:        "Rename an existing file or directory tree to composed (NFC) form",
	RunE:         convertMain,
	SilenceUsage: true,
}

// convertConfiguration stores configuration for the convert command.
var convertConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// nonRecursive indicates that only direct entries of the root should be
	// converted.
	nonRecursive bool
	// decompose indicates that names should be converted to decomposed (NFD)
	// form instead of composed form.
	decompose bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := convertCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&convertConfiguration.help, "help", "h", false, "Show help information")

	// Wire up convert command flags.
	flags.BoolVar(&convertConfiguration.nonRecursive, "non-recursive", false, "Convert direct entries only, without descending")
	flags.BoolVarP(&convertConfiguration.decompose, "decompose", "R", false, "Convert names to decomposed (NFD) form instead")
}
