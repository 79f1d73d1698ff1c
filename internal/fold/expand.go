// internal/fold/expand.go
package fold

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/solatis/rulefold/internal/types"
)

/*
 * OR-expansion and fold primitives.
 *
 * Every soundness check in the engine reduces to comparing concrete
 * (OR-free) tuple sets, so expansion is the ground truth:
 *   - ExpandOrs: Cartesian product of one tuple's alternative sets
 *   - ExpandAll: de-duplicated union of ExpandOrs over a tuple set
 *   - VerifyCompleteness: candidate expansion is a subset of the original
 *   - Fold: union of alternatives at the single differing position
 *
 * The wildcard "*" and "N/A" are plain literals here. A pattern containing
 * "*" expands to the literal "*", exactly as the catalog stored it, so
 * folding never widens a wildcard into concrete values or vice versa.
 *
 * Alternative sets are parsed once per distinct value and memoized in an
 * LRU shared by all cluster workers (lru.Cache is safe for concurrent use).
 */

// expander carries the alternative-set cache and the expansion cap.
type expander struct {
	alts  *lru.Cache[types.Value, []string]
	limit int
}

// alternatives returns the memoized alternative set of v.
// The returned slice is shared and must not be modified.
func (x *expander) alternatives(v types.Value) []string {
	if x.alts != nil {
		if a, ok := x.alts.Get(v); ok {
			return a
		}
	}
	a := v.Alternatives()
	if x.alts != nil {
		x.alts.Add(v, a)
	}
	return a
}

// count returns the number of concrete tuples vals expands to.
// Returns false if the count exceeds the limit (limit <= 0 means unbounded).
func (x *expander) count(vals []types.Value) (int, bool) {
	n := 1
	for _, v := range vals {
		n *= len(x.alternatives(v))
		if x.limit > 0 && n > x.limit {
			return n, false
		}
	}
	return n, true
}

// each calls fn for every concrete tuple of vals in lexicographic order.
// Stops early and returns false when fn returns false.
func (x *expander) each(vals []types.Value, fn func(types.MatchTuple) bool) bool {
	sets := make([][]string, len(vals))
	for i, v := range vals {
		sets[i] = x.alternatives(v)
	}
	idx := make([]int, len(vals))
	cur := make([]types.Value, len(vals))
	for {
		for i, s := range sets {
			cur[i] = types.Value(s[idx[i]])
		}
		if !fn(types.NewMatchTuple(cur...)) {
			return false
		}
		// Odometer increment, last position fastest.
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(sets[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return true
		}
	}
}

// expandAll returns the concrete set of tuples.
// Returns ErrExpansionTooLarge once the running total passes the limit.
func (x *expander) expandAll(tuples [][]types.Value) (map[types.MatchTuple]struct{}, error) {
	set := make(map[types.MatchTuple]struct{})
	for _, vals := range tuples {
		if _, ok := x.count(vals); !ok {
			return nil, types.ErrExpansionTooLarge
		}
		x.each(vals, func(t types.MatchTuple) bool {
			set[t] = struct{}{}
			return true
		})
		if x.limit > 0 && len(set) > x.limit {
			return nil, types.ErrExpansionTooLarge
		}
	}
	return set, nil
}

// verify reports whether every concrete tuple of candidate is in original.
func (x *expander) verify(candidate []types.Value, original map[types.MatchTuple]struct{}) bool {
	n, ok := x.count(candidate)
	if !ok || n > len(original) {
		return false
	}
	return x.each(candidate, func(t types.MatchTuple) bool {
		_, found := original[t]
		return found
	})
}

// fold merges a and b at position i; all other positions are copied from a.
func (x *expander) fold(a, b []types.Value, i int) []types.Value {
	out := make([]types.Value, len(a))
	copy(out, a)
	out[i] = types.JoinAlternatives(types.UnionAlternatives(x.alternatives(a[i]), x.alternatives(b[i])))
	return out
}

var unbounded = &expander{}

// ExpandOrs explodes one tuple into its concrete, OR-free tuples.
// Order is lexicographic over sorted alternatives.
func ExpandOrs(t types.MatchTuple) []types.MatchTuple {
	var out []types.MatchTuple
	unbounded.each(t.Values(), func(c types.MatchTuple) bool {
		out = append(out, c)
		return true
	})
	return out
}

// ExpandAll returns the sorted, de-duplicated concrete tuples of tuples.
func ExpandAll(tuples []types.MatchTuple) []types.MatchTuple {
	vals := make([][]types.Value, len(tuples))
	for i, t := range tuples {
		vals[i] = t.Values()
	}
	set, _ := unbounded.expandAll(vals)
	return sortedSet(set)
}

// VerifyCompleteness reports whether every concrete tuple produced by
// candidate is a member of original.
func VerifyCompleteness(candidate types.MatchTuple, original map[types.MatchTuple]struct{}) bool {
	return unbounded.verify(candidate.Values(), original)
}

// Fold combines two tuples differing only at position i.
// Position i becomes the sorted union of both alternative sets.
func Fold(a, b types.MatchTuple, i int) types.MatchTuple {
	return types.NewMatchTuple(unbounded.fold(a.Values(), b.Values(), i)...)
}

// TupleSet builds a membership set from tuples.
func TupleSet(tuples []types.MatchTuple) map[types.MatchTuple]struct{} {
	set := make(map[types.MatchTuple]struct{}, len(tuples))
	for _, t := range tuples {
		set[t] = struct{}{}
	}
	return set
}

// sortedSet returns the members of set in tuple order.
func sortedSet(set map[types.MatchTuple]struct{}) []types.MatchTuple {
	out := make([]types.MatchTuple, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	SortTuples(out)
	return out
}

// SortTuples sorts tuples in place lexicographically.
func SortTuples(tuples []types.MatchTuple) {
	sort.Slice(tuples, func(i, j int) bool {
		return tuples[i].Compare(tuples[j]) < 0
	})
}
