// internal/fold/rollup.go
package fold

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solatis/rulefold/internal/types"
)

/*
 * Cluster consolidation (rollup).
 *
 * Folds the tuples of one cluster into OR-valued patterns without changing
 * the concrete set they match.
 *
 * Rollup workflow:
 *   1. original = expandAll(T), the ground truth
 *   2. Sweep positions from last to first; per position, pop tuples in
 *      sorted order and fold each with every remaining tuple that differs
 *      only at that position, accepting a candidate only if its full
 *      expansion lies inside original
 *   3. Repeat sweeps until one sweep accepts no fold
 *   4. Assert expandAll(rolled) == original
 *
 * Greedy and order-dependent: the result is sound and a fixed point of the
 * procedure, not a global minimum. Trailing positions fold first, so
 * {(WFC, CLEAR), (WFC, F606W), (HRC, CLEAR)} becomes
 * {(WFC, CLEAR|F606W), (HRC, CLEAR)} and the leading, most selective
 * parameters stay concrete the longest.
 *
 * Working values are canonical (sorted, de-duplicated alternatives), so
 * plain string equality is alternative-set equality inside this file.
 */

// RollupResult reports the outcome of consolidating one cluster.
type RollupResult struct {
	Patterns []types.MatchTuple // sorted
	Input    int                // distinct input tuples
	Concrete int                // size of the original expansion
	Folds    int                // accepted folds
	Rejected int                // candidate folds rejected by verification
	Sweeps   int
}

// Rollup consolidates one cluster's tuples with an expansion cap.
// limit <= 0 disables the cap.
// Returns ErrArityMismatch, ErrExpansionTooLarge or ErrUnsoundFold; callers
// fall back to the unfolded tuples on any error.
func Rollup(tuples []types.MatchTuple, limit int) (RollupResult, error) {
	x := &expander{limit: limit}
	return x.rollup(tuples)
}

func (x *expander) rollup(tuples []types.MatchTuple) (RollupResult, error) {
	var res RollupResult
	if len(tuples) == 0 {
		return res, nil
	}

	arity := tuples[0].Len()
	work := make([][]types.Value, 0, len(tuples))
	for _, t := range tuples {
		if t.Len() != arity {
			return res, fmt.Errorf("%w: %d vs %d", types.ErrArityMismatch, t.Len(), arity)
		}
		vals := t.Values()
		for i, v := range vals {
			vals[i] = types.JoinAlternatives(x.alternatives(v))
		}
		work = append(work, vals)
	}
	work = sortUnique(work)
	res.Input = len(work)

	original, err := x.expandAll(work)
	if err != nil {
		return res, err
	}
	res.Concrete = len(original)

	for {
		res.Sweeps++
		folded := 0
		for i := arity - 1; i >= 0; i-- {
			var n, rejected int
			work, n, rejected = x.rollUpOne(original, work, i)
			folded += n
			res.Rejected += rejected
		}
		res.Folds += folded
		if folded == 0 {
			break
		}
	}

	rolled, err := x.expandAll(work)
	if err != nil {
		return res, err
	}
	if !sameSet(rolled, original) {
		return res, fmt.Errorf("%w: %d concrete tuples became %d", types.ErrUnsoundFold, len(original), len(rolled))
	}

	res.Patterns = make([]types.MatchTuple, len(work))
	for i, vals := range work {
		res.Patterns[i] = types.NewMatchTuple(vals...)
	}
	return res, nil
}

// rollUpOne folds together tuples that differ only at position i.
// Input and output are sorted and duplicate-free.
func (x *expander) rollUpOne(original map[types.MatchTuple]struct{}, work [][]types.Value, i int) ([][]types.Value, int, int) {
	remainder := work
	rolled := make([][]types.Value, 0, len(work))
	folds, rejected := 0, 0

	for len(remainder) > 0 {
		combined := remainder[0]
		remainder = remainder[1:]
		kept := make([][]types.Value, 0, len(remainder))
		for _, match := range remainder {
			if differByOne(combined, match, i) {
				candidate := x.fold(combined, match, i)
				if x.verify(candidate, original) {
					combined = candidate
					folds++
					continue
				}
				rejected++
			}
			kept = append(kept, match)
		}
		remainder = kept
		rolled = append(rolled, combined)
	}
	return sortUnique(rolled), folds, rejected
}

// differByOne compares canonical values: equal everywhere except i.
func differByOne(a, b []types.Value, i int) bool {
	if a[i] == b[i] {
		return false
	}
	for j := range a {
		if j != i && a[j] != b[j] {
			return false
		}
	}
	return true
}

// sortUnique sorts value slices lexicographically and drops duplicates.
func sortUnique(work [][]types.Value) [][]types.Value {
	sort.Slice(work, func(a, b int) bool {
		return compareValues(work[a], work[b]) < 0
	})
	out := work[:0]
	for _, vals := range work {
		if len(out) > 0 && compareValues(vals, out[len(out)-1]) == 0 {
			continue
		}
		out = append(out, vals)
	}
	return out
}

func compareValues(a, b []types.Value) int {
	for k := 0; k < len(a) && k < len(b); k++ {
		if c := strings.Compare(string(a[k]), string(b[k])); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func sameSet(a, b map[types.MatchTuple]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for t := range a {
		if _, ok := b[t]; !ok {
			return false
		}
	}
	return true
}
