package jobconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/signaljob/internal/contracts"
)

// Load reads the YAML file at path and returns the validated Config with the
// raw bytes. Errors are *contracts.Error values:
//   - KindNotFound when the file does not exist
//   - KindParse when the document is not a YAML mapping of the expected types
//   - KindValidation when a required key is absent or out of range
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, contracts.NotFoundError("Config file not found", err)
		}
		return nil, nil, contracts.ParseError(fmt.Sprintf("read config: %v", err), err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}

	return cfg, data, nil
}

// Parse decodes and validates a YAML document
func Parse(data []byte) (*Config, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	// unknown keys are ignored, so KnownFields stays off
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, contracts.ParseError(fmt.Sprintf("parse config: %v", err), err)
	}

	if err := Validate(&doc); err != nil {
		return nil, err
	}

	return doc.config(), nil
}

// Hash generates SHA256 hash from Config (canonical JSON).
// The same parameters always produce the same hash, which ties a result
// record to the exact configuration that produced it.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
