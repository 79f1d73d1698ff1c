// internal/fold/overlap.go
package fold

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/solatis/rulefold/internal/types"
)

/*
 * Overlap detection across finished patterns.
 *
 * Two patterns overlap when every position is compatible:
 *   - values are equal, or
 *   - either value is the wildcard, or
 *   - one side's alternatives, compiled into an anchored alternation,
 *     match at least one literal of the other side (tried both ways)
 *
 * The regexp form tolerates hybrid values such as "A|*": a "*"
 * alternative compiles to ".*", every other literal is quoted.
 *
 * Patterns produced by the same set of clusters share one history and are
 * never compared.
 *
 * Overlaps are reported only. Choosing a winner is left to operators.
 */

// Compatibility reasons reported per position.
const (
	ReasonEqual     = "equal"
	ReasonWildcard  = "wildcard"
	ReasonIntersect = "intersect"
)

// PositionDetail explains why one position of two patterns is compatible.
type PositionDetail struct {
	Position int
	Left     types.Value
	Right    types.Value
	Reason   string
	Shared   []string // literals matched, for ReasonIntersect
}

// Overlap is a pair of patterns with different histories that can both
// match one lookup.
type Overlap struct {
	Left          types.MatchTuple
	Right         types.MatchTuple
	LeftClusters  []int
	RightClusters []int
	Positions     []PositionDetail
}

// Warning renders o as an overlap warning.
func (o Overlap) Warning() types.Warning {
	parts := make([]string, len(o.Positions))
	for i, p := range o.Positions {
		parts[i] = fmt.Sprintf("%d:%s", p.Position, p.Reason)
	}
	w := types.NewWarning(types.WarnOverlap, "patterns from clusters %v and %v overlap [%s]",
		o.LeftClusters, o.RightClusters, strings.Join(parts, " "))
	w = w.WithTuple(o.Left)
	right := o.Right
	w.Other = &right
	return w
}

// matcher compiles and caches anchored alternations per value.
type matcher struct {
	res map[types.Value]*regexp.Regexp
}

func newMatcher() *matcher {
	return &matcher{res: make(map[types.Value]*regexp.Regexp)}
}

func (m *matcher) regexp(v types.Value) *regexp.Regexp {
	if re, ok := m.res[v]; ok {
		return re
	}
	alts := v.Alternatives()
	parts := make([]string, len(alts))
	for i, a := range alts {
		if a == string(types.Wildcard) {
			parts[i] = ".*"
			continue
		}
		parts[i] = regexp.QuoteMeta(a)
	}
	re := regexp.MustCompile("^(?:" + strings.Join(parts, "|") + ")$")
	m.res[v] = re
	return re
}

// matchAny returns the literals of other matched by the alternation of v.
func (m *matcher) matchAny(v, other types.Value) []string {
	re := m.regexp(v)
	var shared []string
	for _, lit := range other.Alternatives() {
		if re.MatchString(lit) {
			shared = append(shared, lit)
		}
	}
	return shared
}

func (m *matcher) compatible(i int, a, b types.Value) (PositionDetail, bool) {
	d := PositionDetail{Position: i, Left: a, Right: b}
	switch {
	case a.Equal(b):
		d.Reason = ReasonEqual
		return d, true
	case a.IsWildcard() || b.IsWildcard():
		d.Reason = ReasonWildcard
		return d, true
	}
	shared := m.matchAny(a, b)
	if len(shared) == 0 {
		shared = m.matchAny(b, a)
	}
	if len(shared) == 0 {
		return d, false
	}
	d.Reason = ReasonIntersect
	d.Shared = shared
	return d, true
}

func (m *matcher) overlaps(a, b types.MatchTuple) ([]PositionDetail, bool) {
	if a.Len() != b.Len() {
		return nil, false
	}
	av, bv := a.Values(), b.Values()
	details := make([]PositionDetail, 0, len(av))
	for i := range av {
		d, ok := m.compatible(i, av[i], bv[i])
		if !ok {
			return nil, false
		}
		details = append(details, d)
	}
	return details, true
}

// Overlaps reports whether a and b are compatible at every position.
func Overlaps(a, b types.MatchTuple) ([]PositionDetail, bool) {
	return newMatcher().overlaps(a, b)
}

// DetectOverlaps scans every pair of rules with different histories. Two
// rules share a history only when the same clusters produced both; a pattern
// merged from several clusters is compared against each of them.
// Rules are visited in table order, so the report order is deterministic.
func DetectOverlaps(rules []Rule) []Overlap {
	m := newMatcher()
	var out []Overlap
	for i := range rules {
		for j := i + 1; j < len(rules); j++ {
			if slices.Equal(rules[i].Clusters, rules[j].Clusters) {
				continue
			}
			details, ok := m.overlaps(rules[i].Pattern, rules[j].Pattern)
			if !ok {
				continue
			}
			out = append(out, Overlap{
				Left:          rules[i].Pattern,
				Right:         rules[j].Pattern,
				LeftClusters:  rules[i].Clusters,
				RightClusters: rules[j].Clusters,
				Positions:     details,
			})
		}
	}
	return out
}
