package daemon

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/nfd2nfc/nfd2nfc/pkg/daemon"
	"github.com/nfd2nfc/nfd2nfc/pkg/ipc"
	"github.com/nfd2nfc/nfd2nfc/pkg/nfd2nfc"
	"github.com/nfd2nfc/nfd2nfc/pkg/rpc"
	daemonsvc "github.com/nfd2nfc/nfd2nfc/pkg/service/daemon"
)

const (
	// autostartWaitInterval is the wait period between reconnect attempts
	// after autostarting the daemon.
	autostartWaitInterval = 100 * time.Millisecond
	// autostartRetryCount is the number of times to try reconnecting after
	// autostarting the daemon.
	autostartRetryCount = 10
)

// autostartDisabled controls whether or not daemon autostart is disabled. It
// is set automatically based on the NFD2NFC_DISABLE_AUTOSTART environment
// variable.
var autostartDisabled bool

func init() {
	autostartDisabled = os.Getenv("NFD2NFC_DISABLE_AUTOSTART") == "1"
}

// dial makes a single connection attempt against the daemon endpoint.
func dial(endpoint string) (*rpc.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ipc.RecommendedDialTimeout)
	defer cancel()
	connection, err := ipc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return rpc.NewClient(connection)
}

// Connect creates a new daemon client connection, optionally starting the
// daemon if it isn't running and optionally verifying that the daemon
// version matches the current process' version.
func Connect(autostart, enforceVersionMatch bool) (*rpc.Client, error) {
	// Compute the path to the daemon IPC endpoint.
	endpoint, err := daemon.EndpointPath()
	if err != nil {
		return nil, errors.Wrap(err, "unable to compute endpoint path")
	}

	// Check if autostart has been disabled by the environment.
	if autostartDisabled {
		autostart = false
	}

	// Perform dialing in a loop until failure or success. Local endpoint
	// dialing fails fast when nothing is listening, so any dial error is a
	// candidate for autostart.
	remainingAttempts := autostartRetryCount
	invokedStart := false
	var client *rpc.Client
	for {
		client, err = dial(endpoint)
		if err == nil {
			break
		}
		if autostart && remainingAttempts > 0 {
			if !invokedStart {
				if err := startMain(nil, nil); err != nil {
					return nil, errors.Wrap(err, "unable to autostart daemon")
				}
				fmt.Fprintln(os.Stderr, "Started nfd2nfc daemon in background (terminate with \"nfd2nfc daemon stop\")")
				invokedStart = true
			}
			time.Sleep(autostartWaitInterval)
			remainingAttempts--
			continue
		}
		return nil, errors.New("unable to connect to daemon (is it running?)")
	}

	// If requested, verify that the daemon version matches the current
	// process' version.
	if enforceVersionMatch {
		version, err := daemonsvc.Version(client)
		if err != nil {
			client.Close()
			return nil, errors.Wrap(err, "unable to query daemon version")
		}
		if version != nfd2nfc.Version {
			client.Close()
			return nil, errors.New("client/daemon version mismatch (daemon restart recommended)")
		}
	}

	// Success.
	return client, nil
}
