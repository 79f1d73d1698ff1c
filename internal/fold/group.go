// internal/fold/group.go
package fold

import (
	"fmt"

	"github.com/solatis/rulefold/internal/types"
)

// Grouping accumulates useafter entries per distinct match tuple.
// Not safe for concurrent use.
type Grouping struct {
	entries map[types.MatchTuple][]types.FileEntry
}

// GroupFilter is a per-mode adjustment applied to a completed grouping
// before inversion. It may rewrite or delete tuples and returns warnings.
type GroupFilter func(g *Grouping) []types.Warning

// NewGrouping returns an empty grouping.
func NewGrouping() *Grouping {
	return &Grouping{entries: make(map[types.MatchTuple][]types.FileEntry)}
}

// Add appends entry under tuple.
// An identical (date, file) pair is a duplicate and is skipped. A same-date,
// different-file entry is kept alongside the existing one with its comment
// marked ambiguous, and a date_collision warning is returned.
func (g *Grouping) Add(tuple types.MatchTuple, entry types.FileEntry) []types.Warning {
	existing := g.entries[tuple]
	key := entry.Key()

	var collided []string
	for _, e := range existing {
		k := e.Key()
		if !k.Date.Equal(key.Date) {
			continue
		}
		if k.File == key.File {
			return nil
		}
		collided = append(collided, k.File)
	}

	var warnings []types.Warning
	if len(collided) > 0 {
		entry = entry.MarkAmbiguous()
		w := types.NewWarning(types.WarnDateCollision,
			"useafter %s selects %s and %v", entry.Date.Format(types.DateFormat), entry.File, collided)
		warnings = append(warnings, w.WithTuple(tuple))
	}
	g.entries[tuple] = append(existing, entry)
	return warnings
}

// Len returns the number of distinct tuples.
func (g *Grouping) Len() int {
	return len(g.entries)
}

// Tuples returns all tuples in sorted order.
func (g *Grouping) Tuples() []types.MatchTuple {
	out := make([]types.MatchTuple, 0, len(g.entries))
	for t := range g.entries {
		out = append(out, t)
	}
	SortTuples(out)
	return out
}

// Entries returns a sorted copy of the entries under tuple.
func (g *Grouping) Entries(tuple types.MatchTuple) []types.FileEntry {
	src := g.entries[tuple]
	if len(src) == 0 {
		return nil
	}
	out := make([]types.FileEntry, len(src))
	copy(out, src)
	types.SortEntries(out)
	return out
}

// Replace substitutes the entries under tuple. Used by group filters.
func (g *Grouping) Replace(tuple types.MatchTuple, entries []types.FileEntry) error {
	if len(g.entries) > 0 {
		for t := range g.entries {
			if t.Len() != tuple.Len() {
				return fmt.Errorf("%w: %d vs %d", types.ErrArityMismatch, tuple.Len(), t.Len())
			}
			break
		}
	}
	if len(entries) == 0 {
		delete(g.entries, tuple)
		return nil
	}
	cp := make([]types.FileEntry, len(entries))
	copy(cp, entries)
	g.entries[tuple] = cp
	return nil
}

// Delete removes tuple and its entries.
func (g *Grouping) Delete(tuple types.MatchTuple) {
	delete(g.entries, tuple)
}
