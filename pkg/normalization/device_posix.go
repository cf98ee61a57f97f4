//go:build !windows

package normalization

import (
	"os"
	"syscall"
)

// deviceID extracts the filesystem device ID from file metadata. The second
// return value indicates whether extraction was possible.
func deviceID(info os.FileInfo) (uint64, bool) {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(stat.Dev), true
	}
	return 0, false
}
