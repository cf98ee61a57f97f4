package encoding

import (
	"github.com/BurntSushi/toml"
)

// LoadAndUnmarshalTOML loads TOML data from the specified path and decodes it
// into the specified value.
func LoadAndUnmarshalTOML(path string, value interface{}) error {
	return LoadAndUnmarshal(path, func(data []byte) error {
		return toml.Unmarshal(data, value)
	})
}

// MarshalAndSaveTOML encodes the specified value as TOML and saves it
// atomically to the specified path.
func MarshalAndSaveTOML(path string, value interface{}) error {
	return MarshalAndSave(path, func() ([]byte, error) {
		return toml.Marshal(value)
	})
}
