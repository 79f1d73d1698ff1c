// internal/fold/assemble.go
package fold

import (
	"sort"

	"github.com/solatis/rulefold/internal/types"
)

// Consolidated is a cluster after rollup.
// Folded is false when the fold was abandoned and Patterns are the original
// unfolded tuples.
type Consolidated struct {
	Cluster
	Patterns []types.MatchTuple
	Folded   bool
	Rollup   RollupResult
}

// Rule is one finished pattern and its useafter history.
// Clusters lists every cluster that produced the pattern, ascending; more
// than one means the history was merged.
type Rule struct {
	Pattern  types.MatchTuple
	Entries  []types.FileEntry
	Clusters []int
}

// RuleTable maps patterns to sorted entry lists. Immutable once assembled;
// accessors return copies.
type RuleTable struct {
	rules []Rule
	index map[types.MatchTuple]int
}

// Assemble builds the rule table from consolidated clusters.
// A pattern produced by more than one cluster is merged; any same-date,
// different-file pairs in the merged list are marked ambiguous and reported
// as table_collision warnings.
func Assemble(clusters []Consolidated) (*RuleTable, []types.Warning) {
	t := &RuleTable{index: make(map[types.MatchTuple]int)}
	var warnings []types.Warning

	for ci, c := range clusters {
		for _, p := range c.Patterns {
			if idx, ok := t.index[p]; ok {
				merged := mergeEntries(t.rules[idx].Entries, c.Entries)
				marked, collided := markCollisions(merged)
				t.rules[idx].Entries = marked
				t.rules[idx].Clusters = append(t.rules[idx].Clusters, ci)
				for _, k := range collided {
					w := types.NewWarning(types.WarnTableCollision,
						"useafter collision at %s after merging clusters %v", k.String(), t.rules[idx].Clusters)
					warnings = append(warnings, w.WithTuple(p))
				}
				continue
			}
			entries := make([]types.FileEntry, len(c.Entries))
			copy(entries, c.Entries)
			types.SortEntries(entries)
			entries, collided := markCollisions(entries)
			for _, k := range collided {
				w := types.NewWarning(types.WarnTableCollision, "unmarked useafter collision at %s", k.String())
				warnings = append(warnings, w.WithTuple(p))
			}
			t.index[p] = len(t.rules)
			t.rules = append(t.rules, Rule{Pattern: p, Entries: entries, Clusters: []int{ci}})
		}
	}

	sort.SliceStable(t.rules, func(i, j int) bool {
		return t.rules[i].Pattern.Compare(t.rules[j].Pattern) < 0
	})
	for i, r := range t.rules {
		t.index[r.Pattern] = i
	}
	return t, warnings
}

// mergeEntries unions two entry lists by key, keeping the first comment.
func mergeEntries(a, b []types.FileEntry) []types.FileEntry {
	seen := make(map[types.EntryKey]int, len(a)+len(b))
	out := make([]types.FileEntry, 0, len(a)+len(b))
	for _, list := range [][]types.FileEntry{a, b} {
		for _, e := range list {
			if i, ok := seen[e.Key()]; ok {
				if e.Ambiguous() {
					out[i] = out[i].MarkAmbiguous()
				}
				continue
			}
			seen[e.Key()] = len(out)
			out = append(out, e)
		}
	}
	types.SortEntries(out)
	return out
}

// markCollisions leaves at most one unmarked entry per useafter date.
// Input must be sorted. Returns the keys newly marked.
func markCollisions(entries []types.FileEntry) ([]types.FileEntry, []types.EntryKey) {
	var marked []types.EntryKey
	for i := 0; i < len(entries); {
		j := i
		for j < len(entries) && entries[j].Date.Equal(entries[i].Date) {
			j++
		}
		unmarked := false
		for k := i; k < j; k++ {
			if entries[k].Ambiguous() {
				continue
			}
			if unmarked {
				entries[k] = entries[k].MarkAmbiguous()
				marked = append(marked, entries[k].Key())
				continue
			}
			unmarked = true
		}
		i = j
	}
	return entries, marked
}

// Len returns the number of rules.
func (t *RuleTable) Len() int {
	return len(t.rules)
}

// Rules returns a copy of the rules in pattern order.
func (t *RuleTable) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = Rule{
			Pattern:  r.Pattern,
			Entries:  copyEntries(r.Entries),
			Clusters: append([]int(nil), r.Clusters...),
		}
	}
	return out
}

// Patterns returns the patterns in order.
func (t *RuleTable) Patterns() []types.MatchTuple {
	out := make([]types.MatchTuple, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Pattern
	}
	return out
}

// Lookup returns the entries for an exact pattern.
func (t *RuleTable) Lookup(pattern types.MatchTuple) ([]types.FileEntry, bool) {
	i, ok := t.index[pattern]
	if !ok {
		return nil, false
	}
	return copyEntries(t.rules[i].Entries), true
}

// Records flattens the table back into catalog records, one per
// (pattern, entry). Feeding them to Consolidate reproduces the table.
func (t *RuleTable) Records(params []string) []types.Record {
	var out []types.Record
	for _, r := range t.rules {
		vals := r.Pattern.Values()
		for _, e := range r.Entries {
			m := make(map[string]string, len(params))
			for i, p := range params {
				if i < len(vals) {
					m[p] = string(vals[i])
				}
			}
			out = append(out, types.Record{
				Values:  m,
				File:    e.File,
				Comment: e.Comment,
				Date:    e.Date,
				Source:  r.Pattern.String(),
			})
		}
	}
	return out
}

func copyEntries(in []types.FileEntry) []types.FileEntry {
	out := make([]types.FileEntry, len(in))
	copy(out, in)
	return out
}
