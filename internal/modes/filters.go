// internal/modes/filters.go
package modes

import (
	"fmt"

	"github.com/solatis/rulefold/internal/fold"
	"github.com/solatis/rulefold/internal/types"
)

// Named group filters a mode may select with `filter:`.
var namedFilters = map[string]fold.GroupFilter{
	"drop_all_na": DropAllNotApplicable,
}

// FilterByName resolves a named group filter.
func FilterByName(name string) (fold.GroupFilter, error) {
	f, ok := namedFilters[name]
	if !ok {
		return nil, fmt.Errorf("unknown filter %q", name)
	}
	return f, nil
}

// FilterNames returns the available filter names, sorted.
func FilterNames() []string {
	return sortedKeys(namedFilters)
}

// DropAllNotApplicable deletes tuples whose every value is N/A. Such rows
// carry no selection information and would match any lookup.
func DropAllNotApplicable(g *fold.Grouping) []types.Warning {
	var warnings []types.Warning
	for _, t := range g.Tuples() {
		if !allNotApplicable(t) {
			continue
		}
		n := len(g.Entries(t))
		g.Delete(t)
		w := types.NewWarning(types.WarnFiltered, "dropped all-N/A tuple with %d entries", n)
		warnings = append(warnings, w.WithTuple(t))
	}
	return warnings
}

func allNotApplicable(t types.MatchTuple) bool {
	for _, v := range t.Values() {
		if !v.IsNotApplicable() {
			return false
		}
	}
	return t.Len() > 0
}
