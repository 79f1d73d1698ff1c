// internal/rules/fieldpath.go
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solatis/rulefold/internal/types"
)

// resolveField looks up an upper-case keyword in header and conditions it.
// Header keys are matched exactly first, then case-insensitively in sorted
// key order.
func resolveField(header map[string]string, field string) (Operand, error) {
	key, ok := FieldKey(header, field)
	if !ok {
		return Operand{}, fmt.Errorf("%w: %s", types.ErrFieldNotFound, field)
	}
	return Condition(header[key]), nil
}

// FieldKey returns the header key naming field, ignoring case.
func FieldKey(header map[string]string, field string) (string, bool) {
	if _, ok := header[field]; ok {
		return field, true
	}
	var keys []string
	for k := range header {
		if strings.EqualFold(k, field) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return keys[0], true
}

// Fields returns the distinct header keywords node reads, sorted.
func Fields(node Node) []string {
	seen := make(map[string]struct{})
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case And:
			for _, t := range n.Terms {
				walk(t)
			}
		case Or:
			for _, t := range n.Terms {
				walk(t)
			}
		case Not:
			walk(n.X)
		case Compare:
			seen[n.Field] = struct{}{}
		case In:
			seen[n.Field] = struct{}{}
		}
	}
	walk(node)
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
