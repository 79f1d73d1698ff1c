package types

import "strings"

// tupleSep separates positions inside a MatchTuple key. A separator or
// escape byte inside a value is escaped, so any value round-trips and the
// arity never changes.
const (
	tupleSep = "\x1f"
	tupleEsc = "\x1e"
)

var (
	escaper   = strings.NewReplacer(tupleEsc, tupleEsc+tupleEsc, tupleSep, tupleEsc+"\x1d")
	unescaper = strings.NewReplacer(tupleEsc+tupleEsc, tupleEsc, tupleEsc+"\x1d", tupleSep)
)

// MatchTuple is an immutable, ordered sequence of parameter values.
// Comparable so it can be used directly as a map key.
type MatchTuple struct {
	key   string
	arity int
}

// NewMatchTuple builds a tuple from values in declared parameter order.
func NewMatchTuple(values ...Value) MatchTuple {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = escaper.Replace(string(v))
	}
	return MatchTuple{key: strings.Join(parts, tupleSep), arity: len(values)}
}

// Len returns the tuple arity.
func (t MatchTuple) Len() int {
	return t.arity
}

// Values returns a copy of the tuple's values.
func (t MatchTuple) Values() []Value {
	if t.arity == 0 {
		return nil
	}
	parts := strings.Split(t.key, tupleSep)
	out := make([]Value, len(parts))
	for i, p := range parts {
		if strings.Contains(p, tupleEsc) {
			p = unescaper.Replace(p)
		}
		out[i] = Value(p)
	}
	return out
}

// At returns the value at position i.
// Panics if i is out of range, like slice indexing.
func (t MatchTuple) At(i int) Value {
	return t.Values()[i]
}

// Compare orders tuples lexicographically by position, then by arity.
func (t MatchTuple) Compare(other MatchTuple) int {
	a, b := t.Values(), other.Values()
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(string(a[i]), string(b[i])); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// DifferByOne reports whether t and other are equal at every position except
// i, and differ at i. Equality is on alternative sets.
func (t MatchTuple) DifferByOne(other MatchTuple, i int) bool {
	return DifferByOne(t.Values(), other.Values(), i)
}

// String renders the tuple as (A, B|C).
func (t MatchTuple) String() string {
	vals := t.Values()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// DifferByOne is the slice form of MatchTuple.DifferByOne.
func DifferByOne(a, b []Value, i int) bool {
	if len(a) != len(b) || i < 0 || i >= len(a) {
		return false
	}
	for j := range a {
		if j == i {
			if a[j].Equal(b[j]) {
				return false
			}
			continue
		}
		if !a[j].Equal(b[j]) {
			return false
		}
	}
	return true
}
