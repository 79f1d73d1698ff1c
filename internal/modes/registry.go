// internal/modes/registry.go
package modes

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/solatis/rulefold/internal/fold"
	"github.com/solatis/rulefold/internal/rules"
	"github.com/solatis/rulefold/internal/types"
)

/*
 * Mode registry.
 *
 * Maps (instrument, filekind) to a compiled Plan. Registration merges the
 * declared Mode with the built-in adjustment table below, compiles its
 * relevance expressions, and resolves its named group filter, so every
 * configuration error surfaces at registration rather than mid-run.
 *
 * Later registrations of the same pair replace earlier ones; a modes file
 * loaded over DefaultRegistry overrides built-in modes by name.
 */

//go:embed defaults.yaml
var defaultModes []byte

// builtinAdjustments are catalog quirks applied to every registration of
// the pair, whatever the mode file says.
var builtinAdjustments = map[string]Adjustment{
	modeKey("acs", "biasfile"): {
		Ignore: []string{"xcorner", "ycorner", "ccdchip"},
	},
	modeKey("wfpc2", "flatfile"): {
		Ignore: []string{"imagetyp", "filtnam1", "filtnam2", "lrfwave"},
	},
	modeKey("wfc3", "biasfile"): {
		Ignore: []string{"subarray"},
	},
	// exptype drives relevance only; it is never matched.
	modeKey("cos", "spwcstab"): {
		Ignore: []string{"exptype"},
		Extra:  []string{"exptype"},
	},
}

// Registry holds compiled plans by (instrument, filekind).
// Not safe for concurrent registration; lookups after setup are safe.
type Registry struct {
	plans map[string]*Plan
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{plans: make(map[string]*Plan)}
}

// DefaultRegistry returns a registry holding the built-in modes.
// Panics if the embedded definitions are invalid.
func DefaultRegistry() *Registry {
	modes, err := Parse(defaultModes)
	if err != nil {
		panic(fmt.Sprintf("modes: invalid built-in definitions: %v", err))
	}
	r := NewRegistry()
	for _, m := range modes {
		if err := r.Register(m); err != nil {
			panic(fmt.Sprintf("modes: invalid built-in mode %s: %v", m.Name(), err))
		}
	}
	return r
}

// Register validates and compiles m, replacing any plan for the same pair.
func (r *Registry) Register(m Mode) error {
	m = m.normalize()
	if err := m.validate(); err != nil {
		return err
	}

	adj := mergeAdjustment(builtinAdjustments[m.Name()], Adjustment{
		Ignore:    m.Ignore,
		Translate: m.Translate,
		Extra:     m.Extra,
	})
	columns, params := adj.adjust(m.Parkeys)
	if len(params) == 0 {
		return fmt.Errorf("mode %s: every parkey is ignored: %w", m.Name(), types.ErrNoParameters)
	}

	relevance, err := rules.NewEngine(m.Relevance)
	if err != nil {
		return fmt.Errorf("mode %s: %w", m.Name(), err)
	}

	var filter fold.GroupFilter
	if m.Filter != "" {
		filter, err = FilterByName(m.Filter)
		if err != nil {
			return fmt.Errorf("mode %s: %w", m.Name(), err)
		}
	}

	r.plans[m.Name()] = &Plan{
		mode:       m,
		adjustment: adj,
		columns:    columns,
		params:     params,
		relevance:  relevance,
		filter:     filter,
	}
	return nil
}

// Lookup returns the plan for (instrument, filekind).
func (r *Registry) Lookup(instrument, filekind string) (*Plan, error) {
	p, ok := r.plans[modeKey(instrument, filekind)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownMode, modeKey(instrument, filekind))
	}
	return p, nil
}

// Plans returns every registered plan sorted by name.
func (r *Registry) Plans() []*Plan {
	out := make([]*Plan, 0, len(r.plans))
	for _, k := range sortedKeys(r.plans) {
		out = append(out, r.plans[k])
	}
	return out
}

// Instruments returns the registered instruments, sorted.
func (r *Registry) Instruments() []string {
	seen := make(map[string]struct{})
	for _, p := range r.plans {
		seen[p.mode.Instrument] = struct{}{}
	}
	return sortedKeys(seen)
}

// Filekinds returns the registered filekinds of instrument, sorted.
func (r *Registry) Filekinds(instrument string) []string {
	instrument = strings.ToLower(strings.TrimSpace(instrument))
	var out []string
	for _, p := range r.plans {
		if p.mode.Instrument == instrument {
			out = append(out, p.mode.Filekind)
		}
	}
	sort.Strings(out)
	return out
}

// mergeAdjustment unions two adjustments; b wins on translation conflicts.
func mergeAdjustment(a, b Adjustment) Adjustment {
	out := Adjustment{
		Ignore: unionOrdered(a.Ignore, b.Ignore),
		Extra:  unionOrdered(a.Extra, b.Extra),
	}
	if len(a.Translate)+len(b.Translate) > 0 {
		out.Translate = make(map[string]string, len(a.Translate)+len(b.Translate))
		for k, v := range a.Translate {
			out.Translate[k] = v
		}
		for k, v := range b.Translate {
			out.Translate[k] = v
		}
	}
	return out
}

func unionOrdered(a, b []string) []string {
	var out []string
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
