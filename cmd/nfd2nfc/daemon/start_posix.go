//go:build !windows

package daemon

import (
	"syscall"
)

// daemonProcessAttributes are the process attributes to use for the daemon.
// A new session keeps the daemon alive across terminal exits.
var daemonProcessAttributes = &syscall.SysProcAttr{
	Setsid: true,
}
