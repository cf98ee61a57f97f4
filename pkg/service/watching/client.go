package watching

import (
	"github.com/pkg/errors"

	"github.com/nfd2nfc/nfd2nfc/pkg/rpc"
	"github.com/nfd2nfc/nfd2nfc/pkg/supervisor"
)

// invoke performs a unary request/response exchange.
func invoke(client *rpc.Client, method string, request, response interface{}) error {
	stream, err := client.Invoke(method)
	if err != nil {
		return errors.Wrap(err, "unable to invoke method")
	}
	defer stream.Close()
	if err := stream.Send(request); err != nil {
		return errors.Wrap(err, "unable to send request")
	}
	if err := stream.Receive(response); err != nil {
		return errors.Wrap(err, "unable to receive response")
	}
	return nil
}

// Start asks the daemon to start the watching engine.
func Start(client *rpc.Client) error {
	var response StartResponse
	return invoke(client, MethodStart, StartRequest{}, &response)
}

// Stop asks the daemon to stop the watching engine.
func Stop(client *rpc.Client) error {
	var response StopResponse
	return invoke(client, MethodStop, StopRequest{}, &response)
}

// Restart asks the daemon to restart the watching engine, which is also the
// recovery path after a crash.
func Restart(client *rpc.Client) error {
	var response RestartResponse
	return invoke(client, MethodRestart, RestartRequest{}, &response)
}

// Status queries the watching engine's status. A non-zero previousStateIndex
// blocks the query until the engine's state changes, returning the new index
// for use in the next call.
func Status(client *rpc.Client, previousStateIndex uint64) (supervisor.Status, uint64, error) {
	var response StatusResponse
	if err := invoke(client, MethodStatus, StatusRequest{PreviousStateIndex: previousStateIndex}, &response); err != nil {
		return 0, 0, err
	}
	return response.Status, response.StateIndex, nil
}

// Reload asks the daemon to re-read rules from disk. Rule edits take effect
// without it on the daemon's own file watch, but reloading makes the effect
// immediate.
func Reload(client *rpc.Client) error {
	var response ReloadResponse
	return invoke(client, MethodReload, ReloadRequest{}, &response)
}
