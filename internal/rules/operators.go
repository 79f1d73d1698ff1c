// internal/rules/operators.go
package rules

import "strings"

// compareOp applies op to a conditioned header value and literal.
// Equality and ordering are numeric when both operands are numeric and
// textual otherwise.
func compareOp(op Operator, value, target Operand) bool {
	switch op {
	case OpEq:
		return compareEqual(value, target)
	case OpNeq:
		return !compareEqual(value, target)
	case OpLt:
		return compareOrder(value, target) < 0
	case OpLte:
		return compareOrder(value, target) <= 0
	case OpGt:
		return compareOrder(value, target) > 0
	case OpGte:
		return compareOrder(value, target) >= 0
	default:
		return false
	}
}

func compareEqual(a, b Operand) bool {
	if a.Numeric && b.Numeric {
		return a.Number == b.Number
	}
	return a.Text == b.Text
}

// compareOrder is a three-way comparison (-1/0/1).
func compareOrder(a, b Operand) int {
	if a.Numeric && b.Numeric {
		switch {
		case a.Number < b.Number:
			return -1
		case a.Number > b.Number:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.Text, b.Text)
}

// compareIn reports whether value equals any element of set.
func compareIn(value Operand, set []Operand) bool {
	for _, elem := range set {
		if compareEqual(value, elem) {
			return true
		}
	}
	return false
}
