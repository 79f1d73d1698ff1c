// Package types provides domain models shared across rulefold components.
//
// Zero-dependency design: value, tuple, entry and warning types use only the
// standard library so row sources and serializers can import them without
// pulling in the fold engine. ID utilities in ids.go import uuid but are
// isolated in their own file.
package types

import (
	"sort"
	"strings"
)

// Value is one normalized match parameter value.
// A value is a concrete literal, the wildcard "*", the inapplicable sentinel
// "N/A", or an OR-set of literals joined by "|".
type Value string

const (
	// Wildcard matches any dataset value.
	Wildcard Value = "*"

	// NotApplicable marks a parameter that is irrelevant for a catalog row.
	NotApplicable Value = "N/A"

	// OrSeparator joins the literal alternatives of an OR-set value.
	OrSeparator = "|"
)

// Resource limits enforced by the fold engine.
const (
	// DefaultMaxExpansion caps the concrete tuples a single cluster may
	// expand to. Clusters over the cap are emitted unfolded.
	DefaultMaxExpansion = 1 << 20

	// MaxExpressionDepth bounds nesting in relevance expressions.
	MaxExpressionDepth = 16

	// MaxInOperatorValues limits IN lists in relevance expressions.
	MaxInOperatorValues = 64
)

// Alternatives returns the sorted, de-duplicated literal set of v.
// Whitespace around each alternative is trimmed; empty alternatives are kept
// as "" so that a bare empty value still expands to one literal.
func (v Value) Alternatives() []string {
	s := string(v)
	if !strings.Contains(s, OrSeparator) {
		return []string{strings.TrimSpace(s)}
	}
	parts := strings.Split(s, OrSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	sort.Strings(parts)
	out := parts[:0]
	for i, p := range parts {
		if i > 0 && p == parts[i-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Canonical returns v with its alternatives sorted and de-duplicated.
func (v Value) Canonical() Value {
	return JoinAlternatives(v.Alternatives())
}

// Equal reports whether v and other denote the same alternative set.
func (v Value) Equal(other Value) bool {
	if v == other {
		return true
	}
	a, b := v.Alternatives(), other.Alternatives()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsOr reports whether v carries more than one alternative.
func (v Value) IsOr() bool {
	return len(v.Alternatives()) > 1
}

// IsWildcard reports whether v is exactly the wildcard.
func (v Value) IsWildcard() bool {
	return strings.TrimSpace(string(v)) == string(Wildcard)
}

// IsNotApplicable reports whether v is exactly the N/A sentinel.
func (v Value) IsNotApplicable() bool {
	return strings.TrimSpace(string(v)) == string(NotApplicable)
}

// JoinAlternatives joins literals into an OR-set value.
// Callers pass a sorted, de-duplicated slice to obtain a canonical value.
func JoinAlternatives(alts []string) Value {
	return Value(strings.Join(alts, OrSeparator))
}

// UnionAlternatives returns the sorted union of two alternative sets.
func UnionAlternatives(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, set := range [][]string{a, b} {
		for _, s := range set {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
