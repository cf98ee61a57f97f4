package daemon

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/nfd2nfc/nfd2nfc/pkg/rpc"
)

// Version queries the daemon's version over the specified client.
func Version(client *rpc.Client) (string, error) {
	stream, err := client.Invoke(MethodVersion)
	if err != nil {
		return "", errors.Wrap(err, "unable to invoke version query")
	}
	defer stream.Close()

	if err := stream.Send(VersionRequest{}); err != nil {
		return "", errors.Wrap(err, "unable to send version request")
	}
	var response VersionResponse
	if err := stream.Receive(&response); err != nil {
		return "", errors.Wrap(err, "unable to receive version response")
	}
	return fmt.Sprintf("%d.%d.%d", response.Major, response.Minor, response.Patch), nil
}

// Terminate asks the daemon to shut down. The daemon acknowledges nothing:
// the request is fire-and-forget, with shutdown observable via the endpoint
// disappearing.
func Terminate(client *rpc.Client) error {
	stream, err := client.Invoke(MethodTerminate)
	if err != nil {
		return errors.Wrap(err, "unable to invoke termination")
	}
	return stream.Close()
}
