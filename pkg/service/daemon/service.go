// Package daemon exposes daemon process lifecycle operations over the
// control channel.
package daemon

import (
	"github.com/pkg/errors"

	"github.com/nfd2nfc/nfd2nfc/pkg/nfd2nfc"
	"github.com/nfd2nfc/nfd2nfc/pkg/rpc"
)

const (
	// MethodVersion is the method name for version queries.
	MethodVersion = "daemon.Version"
	// MethodTerminate is the method name for termination requests.
	MethodTerminate = "daemon.Terminate"
)

// VersionRequest requests the daemon's version.
type VersionRequest struct{}

// VersionResponse reports the daemon's version.
type VersionResponse struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// Service implements the daemon lifecycle service.
type Service struct {
	// termination is populated with requests from clients invoking the
	// terminate method. The channel is buffered and written non-blocking, so
	// the daemon host process may service it at its leisure (or not at all);
	// additional termination requests simply bounce off once it's populated.
	termination chan struct{}
}

// NewService creates a daemon service and the channel on which termination
// requests are delivered.
func NewService() (*Service, chan struct{}) {
	termination := make(chan struct{}, 1)
	return &Service{termination}, termination
}

// Methods returns the service's method handlers.
func (s *Service) Methods() map[string]rpc.Handler {
	return map[string]rpc.Handler{
		MethodVersion:   s.version,
		MethodTerminate: s.terminate,
	}
}

func (s *Service) version(stream rpc.HandlerStream) error {
	var request VersionRequest
	if err := stream.Receive(&request); err != nil {
		return errors.Wrap(err, "unable to receive request")
	}
	return stream.Send(VersionResponse{
		Major: nfd2nfc.VersionMajor,
		Minor: nfd2nfc.VersionMinor,
		Patch: nfd2nfc.VersionPatch,
	})
}

func (s *Service) terminate(_ rpc.HandlerStream) error {
	select {
	case s.termination <- struct{}{}:
	default:
	}
	return nil
}
