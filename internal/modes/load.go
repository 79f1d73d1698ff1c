// internal/modes/load.go
package modes

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a modes file.
type File struct {
	Modes []Mode `yaml:"modes"`
}

// Parse decodes a modes document. Unknown fields are rejected.
func Parse(data []byte) ([]Mode, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a modes document from r.
func Decode(r io.Reader) ([]Mode, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode modes: %w", err)
	}
	return f.Modes, nil
}

// LoadFile registers every mode in the file at path into r.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open modes file: %w", err)
	}
	defer f.Close()

	modes, err := Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, m := range modes {
		if err := r.Register(m); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// Encode writes modes as a modes document.
func Encode(w io.Writer, modes []Mode) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(File{Modes: modes}); err != nil {
		return fmt.Errorf("failed to encode modes: %w", err)
	}
	return enc.Close()
}
