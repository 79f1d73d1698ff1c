// internal/fold/extract.go
package fold

import (
	"sort"
	"strings"

	"github.com/solatis/rulefold/internal/types"
)

// Extract converts one raw record into a MatchTuple in declared parameter
// order. Missing parameters become N/A and raise a missing_parameter warning
// so the row is kept rather than dropped. Values are trimmed and their
// alternatives canonicalized.
func Extract(params []string, rec types.Record) (types.MatchTuple, []types.Warning) {
	var warnings []types.Warning
	values := make([]types.Value, len(params))
	for i, name := range params {
		raw, ok := lookup(rec.Values, name)
		if !ok {
			values[i] = types.NotApplicable
			w := types.NewWarning(types.WarnMissingParameter, "parameter %q missing, using %s", name, types.NotApplicable)
			w.Position = i
			warnings = append(warnings, w.WithSource(rec.Source))
			continue
		}
		values[i] = types.Value(strings.TrimSpace(raw)).Canonical()
	}
	return types.NewMatchTuple(values...), warnings
}

// lookup finds name in values, falling back to a case-insensitive match.
// Fallback candidates are scanned in sorted key order for determinism.
func lookup(values map[string]string, name string) (string, bool) {
	if v, ok := values[name]; ok {
		return v, true
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.EqualFold(k, name) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return values[keys[0]], true
}
