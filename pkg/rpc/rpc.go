// Package rpc implements a minimal method-invocation protocol used for
// daemon control: gob-encoded message streams multiplexed over a single
// connection. Each invocation opens a logical stream, sends a method name,
// and then exchanges messages per the method's contract.
package rpc

import (
	"io"
	"net"
	"sync"

	"github.com/pkg/errors"

	"github.com/hashicorp/yamux"
)

// Client invokes methods on a server over a multiplexed connection.
type Client struct {
	// multiplexerLock guards multiplexer.
	multiplexerLock sync.Mutex
	// multiplexer is the underlying stream multiplexer.
	multiplexer *yamux.Session
}

// NewClient creates a client on top of a raw connection to a server.
func NewClient(connection io.ReadWriteCloser) (*Client, error) {
	multiplexer, err := yamux.Client(connection, yamux.DefaultConfig())
	if err != nil {
		return nil, errors.Wrap(err, "unable to create multiplexer")
	}
	return &Client{multiplexer: multiplexer}, nil
}

// Invoke opens an invocation stream for the specified method.
func (c *Client) Invoke(method string) (ClientStream, error) {
	// Open a logical connection.
	c.multiplexerLock.Lock()
	connection, err := c.multiplexer.Open()
	c.multiplexerLock.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "unable to open connection to server")
	}

	// Create a message stream on top of it and send the invocation request.
	stream := newStream(connection)
	if err := stream.Send(method); err != nil {
		stream.Close()
		return nil, errors.Wrap(err, "unable to send invocation request")
	}
	return stream, nil
}

// Close terminates the client's underlying connection, unblocking any
// in-flight invocations.
func (c *Client) Close() error {
	c.multiplexerLock.Lock()
	defer c.multiplexerLock.Unlock()
	return errors.Wrap(c.multiplexer.Close(), "unable to close multiplexer")
}

// Handler implements a single method. A returned error is transmitted to the
// client as a remote error.
type Handler func(HandlerStream) error

// Service exposes a set of named method handlers.
type Service interface {
	Methods() map[string]Handler
}

// Server dispatches invocations to registered services.
type Server struct {
	// handlersLock guards handlers.
	handlersLock sync.RWMutex
	// handlers maps method names to their handlers.
	handlers map[string]Handler
}

// NewServer creates a server with no registered services.
func NewServer() *Server {
	return &Server{
		handlers: make(map[string]Handler),
	}
}

// Register registers a service's methods. Two services registering the same
// method name is a logic error.
func (s *Server) Register(service Service) {
	s.handlersLock.Lock()
	defer s.handlersLock.Unlock()
	for name, method := range service.Methods() {
		if _, ok := s.handlers[name]; ok {
			panic("two methods registered with the same name")
		}
		s.handlers[name] = method
	}
}

// serveStream processes a single invocation.
func (s *Server) serveStream(rawStream *yamux.Stream) {
	stream := newStream(rawStream)
	defer stream.Close()

	// Receive the invocation request.
	var method string
	if stream.Receive(&method) != nil {
		return
	}

	// Find the corresponding handler.
	s.handlersLock.RLock()
	handler := s.handlers[method]
	s.handlersLock.RUnlock()
	if handler == nil {
		stream.markError(errors.Errorf("unknown method: %s", method))
		return
	}

	// Invoke the handler. If the handler error is due to an underlying
	// stream failure, markError will also fail, and there's nothing more to
	// be done about it.
	if err := handler(stream); err != nil {
		stream.markError(err)
	}
}

// multiplexAndServe serves invocations on a single client connection.
func (s *Server) multiplexAndServe(connection io.ReadWriteCloser) error {
	multiplexer, err := yamux.Server(connection, yamux.DefaultConfig())
	if err != nil {
		connection.Close()
		return errors.Wrap(err, "unable to create multiplexer")
	}
	defer multiplexer.Close()

	for {
		stream, err := multiplexer.AcceptStream()
		if err != nil {
			return errors.Wrap(err, "unable to accept stream")
		}
		go s.serveStream(stream)
	}
}

// Serve accepts and serves connections until the listener fails. It closes
// the listener before returning.
func (s *Server) Serve(listener net.Listener) error {
	defer listener.Close()
	for {
		connection, err := listener.Accept()
		if err != nil {
			return errors.Wrap(err, "error accepting connection")
		}
		go s.multiplexAndServe(connection)
	}
}
