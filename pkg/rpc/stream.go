package rpc

import (
	"encoding/gob"
	"fmt"
	"io"
	"net"

	"github.com/pkg/errors"
)

// ClientStream is the client side of an invocation stream.
type ClientStream interface {
	// Send transmits a message to the handler.
	Send(interface{}) error
	// Receive decodes the next message from the handler. It returns io.EOF
	// unmodified if the stream is closed on a message boundary, and a
	// RemoteError if the handler reported a failure.
	Receive(interface{}) error
	// Close closes the stream. It may be called concurrently with Send and
	// Receive, which it will unblock.
	Close() error
}

// HandlerStream is the handler side of an invocation stream. Its lifetime is
// managed by the server, so it exposes no Close.
type HandlerStream interface {
	Send(interface{}) error
	Receive(interface{}) error
}

// RemoteError represents an error that occurred inside a handler and was
// transmitted to the client.
type RemoteError struct {
	message string
}

// Error returns the remote error message.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error: %s", e.message)
}

// messageHeader precedes every message on a stream, carrying error state.
type messageHeader struct {
	Errored bool
	Error   string
}

// stream is the underlying implementation of both stream interfaces. Headers
// and messages are treated as atomic units: once either fails to transit,
// the stream is unusable.
type stream struct {
	connection net.Conn
	errored    bool
	encoder    *gob.Encoder
	decoder    *gob.Decoder
}

func newStream(connection net.Conn) *stream {
	return &stream{
		connection: connection,
		encoder:    gob.NewEncoder(connection),
		decoder:    gob.NewDecoder(connection),
	}
}

func (s *stream) Send(value interface{}) error {
	if s.errored {
		return errors.New("stream is errored")
	}
	if err := s.encoder.Encode(messageHeader{}); err != nil {
		s.errored = true
		return errors.Wrap(err, "unable to encode message header")
	}
	if err := s.encoder.Encode(value); err != nil {
		s.errored = true
		return errors.Wrap(err, "unable to encode message")
	}
	return nil
}

// markError transmits a handler failure to the client, poisoning the stream.
func (s *stream) markError(failure error) error {
	if s.errored {
		return errors.New("stream is errored")
	}
	s.errored = true
	header := messageHeader{Errored: true, Error: failure.Error()}
	if err := s.encoder.Encode(header); err != nil {
		s.connection.Close()
		return errors.Wrap(err, "unable to encode message header")
	}
	return nil
}

func (s *stream) Receive(value interface{}) error {
	if s.errored {
		return errors.New("stream is errored")
	}

	// Decode the header. io.EOF passes through unwrapped so that callers can
	// recognize clean stream termination.
	var header messageHeader
	if err := s.decoder.Decode(&header); err != nil {
		s.errored = true
		if err == io.EOF {
			return err
		}
		return errors.Wrap(err, "unable to decode message header")
	}
	if header.Errored {
		s.errored = true
		return &RemoteError{header.Error}
	}

	// Decode the message. An EOF here means the connection broke between the
	// header and its message, which is never clean, so it's wrapped.
	if err := s.decoder.Decode(value); err != nil {
		s.errored = true
		return errors.Wrap(err, "unable to decode message")
	}
	return nil
}

func (s *stream) Close() error {
	return s.connection.Close()
}
