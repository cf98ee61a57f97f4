// Package daemon provides daemon lifecycle facilities: single-instancing,
// endpoint and log path computation, and host service registration.
package daemon

import (
	"github.com/nfd2nfc/nfd2nfc/pkg/filesystem"
)

const (
	// ipcEndpointName is the name of the daemon IPC endpoint within the
	// daemon subdirectory of the data directory.
	ipcEndpointName = "daemon.sock"
	// lockName is the name of the daemon lock file within the daemon
	// subdirectory of the data directory.
	lockName = "daemon.lock"
	// logName is the name of the daemon log file within the daemon
	// subdirectory of the data directory.
	logName = "daemon.log"
)

// subpath computes a subpath of the daemon subdirectory, creating the daemon
// subdirectory in the process.
func subpath(name string) (string, error) {
	return filesystem.DataPath(true, filesystem.DaemonDirectoryName, name)
}

// EndpointPath computes the path to the daemon IPC endpoint, creating any
// intermediate directories as necessary.
func EndpointPath() (string, error) {
	return subpath(ipcEndpointName)
}

// LogPath computes the path to the daemon log file, creating any
// intermediate directories as necessary.
func LogPath() (string, error) {
	return subpath(logName)
}
