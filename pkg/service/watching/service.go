// Package watching exposes the watching engine's lifecycle operations over
// the control channel.
package watching

import (
	"github.com/pkg/errors"

	"github.com/nfd2nfc/nfd2nfc/pkg/rpc"
	"github.com/nfd2nfc/nfd2nfc/pkg/supervisor"
)

const (
	// MethodStart is the method name for starting the watching engine.
	MethodStart = "watching.Start"
	// MethodStop is the method name for stopping the watching engine.
	MethodStop = "watching.Stop"
	// MethodRestart is the method name for restarting the watching engine.
	MethodRestart = "watching.Restart"
	// MethodStatus is the method name for status queries.
	MethodStatus = "watching.Status"
	// MethodReload is the method name for rule reloads.
	MethodReload = "watching.Reload"
)

// StartRequest requests that watching begin.
type StartRequest struct{}

// StartResponse indicates watching has begun.
type StartResponse struct{}

// StopRequest requests that watching cease.
type StopRequest struct{}

// StopResponse indicates watching has ceased.
type StopResponse struct{}

// RestartRequest requests a fresh watching engine.
type RestartRequest struct{}

// RestartResponse indicates the watching engine was restarted.
type RestartResponse struct{}

// StatusRequest queries the watching engine's status. If PreviousStateIndex
// is non-zero, the response is withheld until the engine's state index
// advances beyond it, allowing clients to monitor for changes without
// polling.
type StatusRequest struct {
	PreviousStateIndex uint64
}

// StatusResponse reports the watching engine's status.
type StatusResponse struct {
	// StateIndex is the state index at which the status was observed.
	StateIndex uint64
	// Status is the engine's status.
	Status supervisor.Status
}

// ReloadRequest requests that rules be re-read from disk.
type ReloadRequest struct{}

// ReloadResponse indicates rules were re-read.
type ReloadResponse struct{}

// Service implements the watching service on top of a supervisor.
type Service struct {
	// supervisor is the underlying supervisor.
	supervisor *supervisor.Supervisor
}

// NewService creates a watching service.
func NewService(supervisor *supervisor.Supervisor) *Service {
	return &Service{supervisor}
}

// Methods returns the service's method handlers.
func (s *Service) Methods() map[string]rpc.Handler {
	return map[string]rpc.Handler{
		MethodStart:   s.start,
		MethodStop:    s.stop,
		MethodRestart: s.restart,
		MethodStatus:  s.status,
		MethodReload:  s.reload,
	}
}

func (s *Service) start(stream rpc.HandlerStream) error {
	var request StartRequest
	if err := stream.Receive(&request); err != nil {
		return errors.Wrap(err, "unable to receive request")
	}
	if err := s.supervisor.Start(); err != nil {
		return err
	}
	return stream.Send(StartResponse{})
}

func (s *Service) stop(stream rpc.HandlerStream) error {
	var request StopRequest
	if err := stream.Receive(&request); err != nil {
		return errors.Wrap(err, "unable to receive request")
	}
	if err := s.supervisor.Stop(); err != nil {
		return err
	}
	return stream.Send(StopResponse{})
}

func (s *Service) restart(stream rpc.HandlerStream) error {
	var request RestartRequest
	if err := stream.Receive(&request); err != nil {
		return errors.Wrap(err, "unable to receive request")
	}
	if err := s.supervisor.Restart(); err != nil {
		return err
	}
	return stream.Send(RestartResponse{})
}

func (s *Service) status(stream rpc.HandlerStream) error {
	var request StatusRequest
	if err := stream.Receive(&request); err != nil {
		return errors.Wrap(err, "unable to receive request")
	}
	status, stateIndex, poisoned := s.supervisor.Poll(request.PreviousStateIndex)
	if poisoned {
		return errors.New("state tracking terminated")
	}
	return stream.Send(StatusResponse{StateIndex: stateIndex, Status: status})
}

func (s *Service) reload(stream rpc.HandlerStream) error {
	var request ReloadRequest
	if err := stream.Receive(&request); err != nil {
		return errors.Wrap(err, "unable to receive request")
	}
	if err := s.supervisor.Reload(); err != nil {
		return err
	}
	return stream.Send(ReloadResponse{})
}
