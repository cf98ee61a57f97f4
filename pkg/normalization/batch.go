package normalization

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nfd2nfc/nfd2nfc/pkg/logging"
)

// ConvertResult summarizes a batch conversion pass.
type ConvertResult struct {
	// Converted is the number of entries renamed to the target form.
	Converted int
	// Conflicts is the number of entries skipped because an entry with the
	// target name already existed.
	Conflicts int
	// Errored is the number of entries that could not be processed due to
	// filesystem errors.
	Errored int
}

// convertEntry renames a single entry within directory to the target form if
// needed, updating result counters, and returns the entry's resulting path.
func convertEntry(directory, name string, target Form, logger *logging.Logger, result *ConvertResult) string {
	current := filepath.Join(directory, name)
	rendered, needed := Rendered(name, target)
	if !needed {
		return current
	}
	destination := filepath.Join(directory, rendered)
	if _, err := os.Lstat(destination); err == nil {
		logger.Warnf("conversion conflict: %s already exists", destination)
		result.Conflicts++
		return current
	} else if !os.IsNotExist(err) {
		logger.Warnf("unable to probe conversion target %s: %v", destination, err)
		result.Errored++
		return current
	}
	if err := os.Rename(current, destination); err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("unable to convert %s: %v", current, err)
			result.Errored++
		}
		return current
	}
	logger.Infof("converted to %v: %s", target, destination)
	result.Converted++
	return destination
}

// ConvertTree renames entry names under root to the target normalization
// form. If root is a regular file (or any non-directory), only its own name
// is converted. For a directory root, its entries are processed and, if
// recursive is true, the walk descends into subdirectories. It is stateless
// and consumes only the classification contract of this package plus basic
// directory traversal. Symlinked directories and directories on a different
// filesystem than root are never descended into. Per-entry failures are
// logged and counted but never halt the walk; the returned error indicates
// only a failure to process the root itself.
func ConvertTree(root string, recursive bool, target Form, logger *logging.Logger) (ConvertResult, error) {
	var result ConvertResult

	// Verify that the root exists.
	info, err := os.Lstat(root)
	if err != nil {
		return result, errors.Wrap(err, "unable to probe conversion root")
	}

	// A non-directory root has only its own name to convert.
	if !info.IsDir() {
		convertEntry(filepath.Dir(root), filepath.Base(root), target, logger, &result)
		return result, nil
	}

	// Grab the root's device ID so that we can avoid crossing filesystem
	// boundaries during descent.
	rootDevice, haveRootDevice := deviceID(info)

	// Process directories breadth-first. Renaming an entry before (rather
	// than after) descending into it keeps child paths valid.
	queue := []string{root}
	for len(queue) > 0 {
		directory := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(directory)
		if err != nil {
			logger.Warnf("unable to read directory %s: %v", directory, err)
			result.Errored++
			continue
		}

		for _, entry := range entries {
			current := convertEntry(directory, entry.Name(), target, logger, &result)

			// Queue subdirectories for descent, skipping symlinks and
			// directories on other filesystems.
			if recursive && entry.IsDir() {
				if entryInfo, err := os.Lstat(current); err != nil {
					continue
				} else if entryInfo.Mode()&os.ModeSymlink != 0 {
					continue
				} else if device, ok := deviceID(entryInfo); ok && haveRootDevice && device != rootDevice {
					logger.Debugf("skipping foreign filesystem: %s", current)
					continue
				}
				queue = append(queue, current)
			}
		}
	}

	// Done.
	return result, nil
}
