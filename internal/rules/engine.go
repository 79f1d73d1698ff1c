// internal/rules/engine.go
package rules

import (
	"fmt"
	"sort"

	"github.com/solatis/rulefold/internal/types"
)

// Engine holds the compiled per-parameter relevance expressions of one mode.
// Immutable after construction; safe for concurrent use.
type Engine struct {
	exprs []relevance
}

type relevance struct {
	param string
	text  string
	node  Node
}

// NewEngine compiles exprs keyed by parameter name.
// An empty map yields an engine that leaves every row unchanged.
func NewEngine(exprs map[string]string) (*Engine, error) {
	params := make([]string, 0, len(exprs))
	for p := range exprs {
		params = append(params, p)
	}
	sort.Strings(params)

	e := &Engine{exprs: make([]relevance, 0, len(params))}
	for _, p := range params {
		node, err := Compile(exprs[p])
		if err != nil {
			return nil, fmt.Errorf("failed to compile relevance for %s: %w", p, err)
		}
		e.exprs = append(e.exprs, relevance{param: p, text: exprs[p], node: node})
	}
	return e, nil
}

// Len returns the number of relevance expressions.
func (e *Engine) Len() int {
	return len(e.exprs)
}

// Params returns the parameters carrying an expression, sorted.
func (e *Engine) Params() []string {
	out := make([]string, len(e.exprs))
	for i, r := range e.exprs {
		out[i] = r.param
	}
	return out
}

// Apply returns a copy of values where every parameter whose expression is
// false is set to N/A. Expressions see the original values, never each
// other's rewrites. An expression that fails to evaluate leaves its
// parameter unchanged and is reported in the returned errors.
func (e *Engine) Apply(values map[string]string) (map[string]string, []error) {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	var errs []error
	for _, r := range e.exprs {
		ok, err := Evaluate(r.node, values)
		if err != nil {
			errs = append(errs, fmt.Errorf("relevance of %s %q: %w", r.param, r.text, err))
			continue
		}
		if ok {
			continue
		}
		key, found := FieldKey(values, r.param)
		if !found {
			key = r.param
		}
		out[key] = string(types.NotApplicable)
	}
	return out, errs
}
