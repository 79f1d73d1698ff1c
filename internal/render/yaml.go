package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes each result as its own YAML document.
func WriteYAML(w io.Writer, results ...Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode rule table: %w", err)
		}
	}
	return enc.Close()
}

// ReadYAML decodes documents written by WriteYAML.
func ReadYAML(r io.Reader) ([]Result, error) {
	dec := yaml.NewDecoder(r)
	var out []Result
	for {
		var res Result
		err := dec.Decode(&res)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode rule table: %w", err)
		}
		out = append(out, res)
	}
}

// WriteJSON writes results as one JSON array.
func WriteJSON(w io.Writer, results ...Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
