package encoding

import (
	"os"
	"path/filepath"
	"testing"
)

// testDocument is a simple structure used to test TOML round-tripping.
type testDocument struct {
	Name  string `toml:"name"`
	Count int    `toml:"count"`
}

func TestTOMLRoundTrip(t *testing.T) {
	// Compute a target path.
	path := filepath.Join(t.TempDir(), "document.toml")

	// Save a document.
	original := &testDocument{Name: "test", Count: 3}
	if err := MarshalAndSaveTOML(path, original); err != nil {
		t.Fatal("unable to save document:", err)
	}

	// Reload it.
	var reloaded testDocument
	if err := LoadAndUnmarshalTOML(path, &reloaded); err != nil {
		t.Fatal("unable to load document:", err)
	}

	// Verify contents.
	if reloaded != *original {
		t.Error("reloaded document does not match original")
	}
}

func TestLoadNonExistent(t *testing.T) {
	// Attempt to load a non-existent path and verify that the error allows
	// detection via os.IsNotExist.
	err := LoadAndUnmarshalTOML(filepath.Join(t.TempDir(), "missing.toml"), &testDocument{})
	if err == nil {
		t.Fatal("expected error loading non-existent file")
	} else if !os.IsNotExist(err) {
		t.Error("error does not indicate non-existence:", err)
	}
}
