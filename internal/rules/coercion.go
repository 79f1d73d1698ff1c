// internal/rules/coercion.go
package rules

import (
	"strconv"
	"strings"
)

/*
 * Value conditioning for relevance comparison.
 *
 * Header values and expression literals are conditioned the same way before
 * comparison:
 *   - surrounding whitespace trimmed
 *   - text upper-cased (catalog keywords are case-insensitive)
 *   - anything ParseFloat accepts is also held as a float64
 *
 * "1", "1.0" and " 1.00 " therefore compare equal, and ordering operators
 * compare numerically when both sides are numbers, as text otherwise.
 */

// Operand is a conditioned value.
type Operand struct {
	Text    string
	Number  float64
	Numeric bool
}

// Condition normalizes a raw header value or literal.
func Condition(raw string) Operand {
	text := strings.ToUpper(strings.TrimSpace(raw))
	op := Operand{Text: text}
	if text == "" {
		return op
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		op.Number = f
		op.Numeric = true
	}
	return op
}

// String renders the operand as an expression literal.
func (o Operand) String() string {
	if o.Numeric {
		return strconv.FormatFloat(o.Number, 'g', -1, 64)
	}
	return strconv.Quote(o.Text)
}
