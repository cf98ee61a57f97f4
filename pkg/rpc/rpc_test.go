package rpc

import (
	"io"
	"net"
	"testing"

	"github.com/pkg/errors"
)

// echoService is a test service with unary, erroring, and streaming methods.
type echoService struct{}

func (s *echoService) Methods() map[string]Handler {
	return map[string]Handler{
		"test.Echo":  s.echo,
		"test.Fail":  s.fail,
		"test.Count": s.count,
	}
}

func (s *echoService) echo(stream HandlerStream) error {
	var message string
	if err := stream.Receive(&message); err != nil {
		return errors.Wrap(err, "unable to receive message")
	}
	return stream.Send(message)
}

func (s *echoService) fail(stream HandlerStream) error {
	var message string
	if err := stream.Receive(&message); err != nil {
		return errors.Wrap(err, "unable to receive message")
	}
	return errors.New("intentional failure")
}

func (s *echoService) count(stream HandlerStream) error {
	var limit uint32
	if err := stream.Receive(&limit); err != nil {
		return errors.Wrap(err, "unable to receive limit")
	}
	for value := uint32(0); value < limit; value++ {
		if err := stream.Send(value); err != nil {
			return errors.Wrap(err, "unable to send value")
		}
	}
	return nil
}

// startServer wires a server and client together over an in-memory
// connection pair, registering cleanup for both.
func startServer(t *testing.T) *Client {
	t.Helper()
	clientConnection, serverConnection := net.Pipe()
	server := NewServer()
	server.Register(&echoService{})
	go server.multiplexAndServe(serverConnection)
	client, err := NewClient(clientConnection)
	if err != nil {
		t.Fatal("unable to create client:", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestInvoke(t *testing.T) {
	client := startServer(t)
	stream, err := client.Invoke("test.Echo")
	if err != nil {
		t.Fatal("unable to invoke:", err)
	}
	defer stream.Close()
	if err := stream.Send("hello"); err != nil {
		t.Fatal("unable to send:", err)
	}
	var response string
	if err := stream.Receive(&response); err != nil {
		t.Fatal("unable to receive:", err)
	}
	if response != "hello" {
		t.Error("response incorrect:", response)
	}
}

func TestInvokeRemoteError(t *testing.T) {
	client := startServer(t)
	stream, err := client.Invoke("test.Fail")
	if err != nil {
		t.Fatal("unable to invoke:", err)
	}
	defer stream.Close()
	if err := stream.Send("hello"); err != nil {
		t.Fatal("unable to send:", err)
	}
	var response string
	err = stream.Receive(&response)
	if err == nil {
		t.Fatal("handler failure not surfaced")
	}
	if _, ok := err.(*RemoteError); !ok {
		t.Error("handler failure not a remote error:", err)
	}
}

func TestInvokeUnknownMethod(t *testing.T) {
	client := startServer(t)
	stream, err := client.Invoke("test.Missing")
	if err != nil {
		t.Fatal("unable to invoke:", err)
	}
	defer stream.Close()
	var response string
	if err := stream.Receive(&response); err == nil {
		t.Error("unknown method invocation succeeded")
	}
}

func TestInvokeStreaming(t *testing.T) {
	client := startServer(t)
	stream, err := client.Invoke("test.Count")
	if err != nil {
		t.Fatal("unable to invoke:", err)
	}
	defer stream.Close()
	if err := stream.Send(uint32(5)); err != nil {
		t.Fatal("unable to send limit:", err)
	}
	for expected := uint32(0); expected < 5; expected++ {
		var value uint32
		if err := stream.Receive(&value); err != nil {
			t.Fatal("unable to receive value:", err)
		}
		if value != expected {
			t.Error("value incorrect:", value, "!=", expected)
		}
	}
}

// TestReceiveCleanTermination verifies that a stream closed on a message
// boundary yields an unwrapped io.EOF, which monitoring clients rely on to
// recognize clean shutdown.
func TestReceiveCleanTermination(t *testing.T) {
	client, server := net.Pipe()
	clientStream := newStream(client)
	go server.Close()
	var message string
	if err := clientStream.Receive(&message); err != io.EOF {
		t.Error("closed stream did not yield io.EOF:", err)
	}
}
