// internal/rules/evaluate.go
package rules

import (
	"fmt"

	"github.com/solatis/rulefold/internal/types"
)

// Evaluate interprets node against a header of raw keyword values.
// And/Or short-circuit left to right, so a missing field behind a decided
// term is never looked up. A missing field otherwise returns
// ErrFieldNotFound.
func Evaluate(node Node, header map[string]string) (bool, error) {
	switch n := node.(type) {
	case And:
		for _, t := range n.Terms {
			ok, err := Evaluate(t, header)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case Or:
		for _, t := range n.Terms {
			ok, err := Evaluate(t, header)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case Not:
		ok, err := Evaluate(n.X, header)
		return !ok && err == nil, err
	case Const:
		return n.Value, nil
	case Compare:
		v, err := resolveField(header, n.Field)
		if err != nil {
			return false, err
		}
		return compareOp(n.Op, v, n.Value), nil
	case In:
		v, err := resolveField(header, n.Field)
		if err != nil {
			return false, err
		}
		return compareIn(v, n.Values) != n.Negate, nil
	default:
		return false, fmt.Errorf("%w: node %T", types.ErrInvalidOperator, node)
	}
}
