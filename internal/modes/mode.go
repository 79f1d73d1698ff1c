// Package modes describes how catalog rows of one (instrument, filekind)
// pair become match records: which columns are parameters, how they are
// renamed, which are irrelevant per row, and which rows are unusable.
package modes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solatis/rulefold/internal/types"
)

// Mode is one declared (instrument, filekind) consolidation mode.
type Mode struct {
	Instrument    string                       `yaml:"instrument"`
	Filekind      string                       `yaml:"filekind"`
	Reftype       string                       `yaml:"reftype"`
	Parkeys       []string                     `yaml:"parkeys"`
	Ignore        []string                     `yaml:"ignore,omitempty"`
	Translate     map[string]string            `yaml:"translate,omitempty"`
	Extra         []string                     `yaml:"extra,omitempty"`
	Relevance     map[string]string            `yaml:"relevance,omitempty"`
	Substitutions map[string]map[string]string `yaml:"substitutions,omitempty"`
	Filter        string                       `yaml:"filter,omitempty"`
}

// Name returns "instrument/filekind".
func (m Mode) Name() string {
	return modeKey(m.Instrument, m.Filekind)
}

// normalize lower-cases identifiers so lookups and columns are
// case-insensitive.
func (m Mode) normalize() Mode {
	m.Instrument = strings.ToLower(strings.TrimSpace(m.Instrument))
	m.Filekind = strings.ToLower(strings.TrimSpace(m.Filekind))
	m.Reftype = strings.ToLower(strings.TrimSpace(m.Reftype))
	m.Parkeys = lowerAll(m.Parkeys)
	m.Ignore = lowerAll(m.Ignore)
	m.Extra = lowerAll(m.Extra)
	if len(m.Translate) > 0 {
		tr := make(map[string]string, len(m.Translate))
		for k, v := range m.Translate {
			tr[strings.ToLower(k)] = strings.ToLower(v)
		}
		m.Translate = tr
	}
	if len(m.Substitutions) > 0 {
		subs := make(map[string]map[string]string, len(m.Substitutions))
		for k, v := range m.Substitutions {
			subs[strings.ToLower(k)] = v
		}
		m.Substitutions = subs
	}
	return m
}

func (m Mode) validate() error {
	if m.Instrument == "" || m.Filekind == "" {
		return fmt.Errorf("mode %q: instrument and filekind are required", m.Name())
	}
	if len(m.Parkeys) == 0 {
		return fmt.Errorf("mode %s: %w", m.Name(), types.ErrNoParameters)
	}
	seen := make(map[string]bool, len(m.Parkeys)+len(m.Extra))
	for _, k := range append(append([]string(nil), m.Parkeys...), m.Extra...) {
		if k == "" {
			return fmt.Errorf("mode %s: empty parkey", m.Name())
		}
		if seen[k] {
			return fmt.Errorf("mode %s: duplicate parkey %q", m.Name(), k)
		}
		seen[k] = true
	}
	return nil
}

// Adjustment is the per-mode rewrite of the declared parkeys.
type Adjustment struct {
	Ignore    []string          // parkeys dropped from matching
	Translate map[string]string // parkey -> catalog column name
	Extra     []string          // keys absent from the catalog, defaulted to N/A
}

// adjust returns the catalog columns to read and the match parameters, in
// order. Ignored parkeys are neither read nor matched. Extra keys are never
// read; they are matched unless ignored.
func (a Adjustment) adjust(parkeys []string) (columns, params []string) {
	ignore := make(map[string]bool, len(a.Ignore))
	for _, k := range a.Ignore {
		ignore[k] = true
	}
	for _, k := range parkeys {
		if ignore[k] {
			continue
		}
		col := k
		if t, ok := a.Translate[k]; ok {
			col = t
		}
		columns = append(columns, col)
	}
	params = append(params, columns...)
	for _, k := range a.Extra {
		if !ignore[k] {
			params = append(params, k)
		}
	}
	return columns, params
}

func modeKey(instrument, filekind string) string {
	return strings.ToLower(instrument) + "/" + strings.ToLower(filekind)
}

func lowerAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
