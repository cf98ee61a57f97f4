//go:build !windows

package ipc

import (
	"context"
	"net"
	"os"

	"github.com/pkg/errors"
)

// DialContext attempts to establish an IPC connection to the endpoint at the
// specified path, timing out if the provided context expires.
func DialContext(ctx context.Context, path string) (net.Conn, error) {
	// A zero-valued dialer has the same dialing behavior as the raw dialing
	// functions.
	dialer := &net.Dialer{}
	return dialer.DialContext(ctx, "unix", path)
}

// NewListener creates an IPC endpoint at the specified path, accessible only
// to the owning user. Any stale endpoint at the path is removed first, which
// is safe because the caller holds the daemon lock.
func NewListener(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "unable to remove stale endpoint")
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0600); err != nil {
		listener.Close()
		return nil, errors.Wrap(err, "unable to set endpoint permissions")
	}
	return listener, nil
}
