// internal/rules/expr.go
package rules

import (
	"strconv"
	"strings"
)

/*
 * Relevance expression tree.
 *
 * A relevance expression decides whether a match parameter matters for a
 * catalog row, e.g. (DETECTOR != "SBC") for a filter that only applies to
 * imaging detectors. Rows where the expression is false get N/A for that
 * parameter.
 *
 * Node kinds:
 *   - And / Or: n-ary, evaluated left to right with short-circuit
 *   - Not: negation
 *   - Compare: FIELD op literal for == != < <= > >=
 *   - In: FIELD [not] in (literal, ...)
 *   - Const: true / false
 *
 * Fields and literals are held in conditioned form (see coercion.go), so
 * comparisons are case-insensitive and numeric where both sides are numbers.
 */

// Operator is a comparison operator.
type Operator int

const (
	OpUnspecified Operator = iota
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpIn
)

var operatorText = map[Operator]string{
	OpEq:  "==",
	OpNeq: "!=",
	OpLt:  "<",
	OpLte: "<=",
	OpGt:  ">",
	OpGte: ">=",
	OpIn:  "in",
}

func (op Operator) String() string {
	if s, ok := operatorText[op]; ok {
		return s
	}
	return "op(" + strconv.Itoa(int(op)) + ")"
}

// Node is a compiled relevance expression.
type Node interface {
	String() string
	node()
}

// And is true when every term is true.
type And struct {
	Terms []Node
}

// Or is true when any term is true.
type Or struct {
	Terms []Node
}

// Not negates X.
type Not struct {
	X Node
}

// Compare tests one header field against a literal.
type Compare struct {
	Field string // upper-case header keyword
	Op    Operator
	Value Operand
}

// In tests membership of a header field in a literal list.
type In struct {
	Field  string
	Values []Operand
	Negate bool
}

// Const is a literal truth value.
type Const struct {
	Value bool
}

func (And) node()     {}
func (Or) node()      {}
func (Not) node()     {}
func (Compare) node() {}
func (In) node()      {}
func (Const) node()   {}

func (n And) String() string { return joinTerms(n.Terms, " and ") }
func (n Or) String() string  { return joinTerms(n.Terms, " or ") }
func (n Not) String() string { return "not " + n.X.String() }

func (n Compare) String() string {
	return "(" + n.Field + " " + n.Op.String() + " " + n.Value.String() + ")"
}

func (n In) String() string {
	parts := make([]string, len(n.Values))
	for i, v := range n.Values {
		parts[i] = v.String()
	}
	op := " in "
	if n.Negate {
		op = " not in "
	}
	return "(" + n.Field + op + "(" + strings.Join(parts, ", ") + "))"
}

func (n Const) String() string {
	if n.Value {
		return "true"
	}
	return "false"
}

func joinTerms(terms []Node, sep string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
