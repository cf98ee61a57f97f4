package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nfd2nfc/nfd2nfc/pkg/ipc"
	"github.com/nfd2nfc/nfd2nfc/pkg/nfd2nfc"
	"github.com/nfd2nfc/nfd2nfc/pkg/rpc"
)

// startService runs a daemon service over a real IPC endpoint, returning a
// connected client and the termination channel.
func startService(t *testing.T) (*rpc.Client, chan struct{}) {
	t.Helper()
	directory := t.TempDir()

	server := rpc.NewServer()
	service, termination := NewService()
	server.Register(service)

	endpoint := filepath.Join(directory, "daemon.sock")
	listener, err := ipc.NewListener(endpoint)
	if err != nil {
		t.Fatal("unable to create endpoint:", err)
	}
	go server.Serve(listener)

	connection, err := ipc.DialContext(context.Background(), endpoint)
	if err != nil {
		t.Fatal("unable to dial endpoint:", err)
	}
	client, err := rpc.NewClient(connection)
	if err != nil {
		t.Fatal("unable to create client:", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, termination
}

func TestVersion(t *testing.T) {
	client, _ := startService(t)

	version, err := Version(client)
	if err != nil {
		t.Fatal("unable to query version:", err)
	}
	if version != nfd2nfc.Version {
		t.Error("version mismatch:", version, "!=", nfd2nfc.Version)
	}
}

func TestTerminate(t *testing.T) {
	client, termination := startService(t)

	if err := Terminate(client); err != nil {
		t.Fatal("unable to request termination:", err)
	}
	select {
	case <-termination:
	case <-time.After(5 * time.Second):
		t.Fatal("termination request not delivered")
	}

	// Additional requests bounce off the populated channel without error.
	if err := Terminate(client); err != nil {
		t.Fatal("unable to repeat termination request:", err)
	}
}
