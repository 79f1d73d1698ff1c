// internal/rules/compile.go
package rules

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/solatis/rulefold/internal/types"
)

/*
 * Relevance expression compilation.
 *
 * Compiles expression text into a Node tree with validated resource limits.
 *
 * Grammar (keywords case-insensitive):
 *   expr    := orExpr
 *   orExpr  := andExpr { "or" andExpr }
 *   andExpr := unary { "and" unary }
 *   unary   := "not" unary | primary
 *   primary := "(" expr ")" | "true" | "false" | FIELD cmpOp literal
 *            | FIELD [ "not" ] "in" list
 *   list    := ( "(" | "[" ) literal { "," literal } [ "," ] ( ")" | "]" )
 *   literal := 'text' | "text" | number
 *
 * Limits are enforced here rather than at evaluation time:
 *   - nesting (parentheses and "not") at most types.MaxExpressionDepth
 *   - at most types.MaxInOperatorValues literals per list
 */

type tokenKind int

const (
	tkEOF tokenKind = iota
	tkIdent
	tkString
	tkNumber
	tkOp
	tkLParen
	tkRParen
	tkLBracket
	tkRBracket
	tkComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tkEOF {
		return "end of expression"
	}
	return fmt.Sprintf("%q", t.text)
}

// keyword reports whether t is the bare word kw, ignoring case.
func (t token) keyword(kw string) bool {
	return t.kind == tkIdent && strings.EqualFold(t.text, kw)
}

func tokenize(text string) ([]token, error) {
	var toks []token
	rs := []rune(text)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{tkLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tkRParen, ")", i})
			i++
		case r == '[':
			toks = append(toks, token{tkLBracket, "[", i})
			i++
		case r == ']':
			toks = append(toks, token{tkRBracket, "]", i})
			i++
		case r == ',':
			toks = append(toks, token{tkComma, ",", i})
			i++
		case r == '\'' || r == '"':
			j := i + 1
			for j < len(rs) && rs[j] != r {
				j++
			}
			if j >= len(rs) {
				return nil, fmt.Errorf("%w: unterminated string at offset %d", types.ErrSyntax, i)
			}
			toks = append(toks, token{tkString, string(rs[i+1 : j]), i})
			i = j + 1
		case strings.ContainsRune("=!<>", r):
			j := i + 1
			if j < len(rs) && rs[j] == '=' {
				j++
			}
			op := string(rs[i:j])
			if op == "=" || op == "!" {
				return nil, fmt.Errorf("%w: %q at offset %d", types.ErrInvalidOperator, op, i)
			}
			toks = append(toks, token{tkOp, op, i})
			i = j
		case unicode.IsDigit(r) || r == '.' || r == '-' || r == '+':
			j := i + 1
			for j < len(rs) && (unicode.IsDigit(rs[j]) || strings.ContainsRune(".eE+-", rs[j])) {
				j++
			}
			toks = append(toks, token{tkNumber, string(rs[i:j]), i})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i + 1
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			toks = append(toks, token{tkIdent, string(rs[i:j]), i})
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", types.ErrSyntax, r, i)
		}
	}
	return append(toks, token{kind: tkEOF, pos: len(rs)}), nil
}

type parser struct {
	toks  []token
	pos   int
	depth int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tkEOF {
		p.pos++
	}
	return t
}

func (p *parser) unexpected(t token) error {
	return fmt.Errorf("%w: unexpected %s at offset %d", types.ErrSyntax, t, t.pos)
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > types.MaxExpressionDepth {
		return types.ErrExpressionTooDeep
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

// Compile parses relevance expression text.
func Compile(text string) (Node, error) {
	if strings.TrimSpace(text) == "" {
		return nil, types.ErrEmptyExpression
	}
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tkEOF {
		return nil, p.unexpected(t)
	}
	return n, nil
}

// MustCompile is like Compile but panics on error.
// Intended for expressions fixed in source.
func MustCompile(text string) Node {
	n, err := Compile(text)
	if err != nil {
		panic(fmt.Sprintf("rules: Compile(%q): %v", text, err))
	}
	return n
}

func (p *parser) parseOr() (Node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []Node{first}
	for p.peek().keyword("or") {
		p.next()
		n, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, n)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return Or{Terms: terms}, nil
}

func (p *parser) parseAnd() (Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	terms := []Node{first}
	for p.peek().keyword("and") {
		p.next()
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		terms = append(terms, n)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return And{Terms: terms}, nil
}

func (p *parser) parseUnary() (Node, error) {
	if !p.peek().keyword("not") {
		return p.parsePrimary()
	}
	p.next()
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return Not{X: x}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.next()
	switch {
	case t.kind == tkLParen:
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tkRParen {
			return nil, p.unexpected(c)
		}
		return n, nil
	case t.keyword("true"):
		return Const{Value: true}, nil
	case t.keyword("false"):
		return Const{Value: false}, nil
	case t.kind == tkIdent && !isReserved(t.text):
		return p.parseComparison(strings.ToUpper(t.text))
	default:
		return nil, p.unexpected(t)
	}
}

func (p *parser) parseComparison(field string) (Node, error) {
	t := p.next()
	switch {
	case t.kind == tkOp:
		op, err := parseOperator(t)
		if err != nil {
			return nil, err
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return Compare{Field: field, Op: op, Value: lit}, nil
	case t.keyword("in"):
		values, err := p.parseList()
		if err != nil {
			return nil, err
		}
		return In{Field: field, Values: values}, nil
	case t.keyword("not"):
		if in := p.next(); !in.keyword("in") {
			return nil, p.unexpected(in)
		}
		values, err := p.parseList()
		if err != nil {
			return nil, err
		}
		return In{Field: field, Values: values, Negate: true}, nil
	default:
		return nil, p.unexpected(t)
	}
}

func (p *parser) parseList() ([]Operand, error) {
	open := p.next()
	var closer tokenKind
	switch open.kind {
	case tkLParen:
		closer = tkRParen
	case tkLBracket:
		closer = tkRBracket
	default:
		return nil, p.unexpected(open)
	}

	var values []Operand
	for {
		if p.peek().kind == closer && len(values) > 0 {
			p.next()
			return values, nil
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, lit)
		if len(values) > types.MaxInOperatorValues {
			return nil, types.ErrTooManyInValues
		}
		switch t := p.next(); t.kind {
		case tkComma:
		case closer:
			return values, nil
		default:
			return nil, p.unexpected(t)
		}
	}
}

func (p *parser) parseLiteral() (Operand, error) {
	t := p.next()
	switch t.kind {
	case tkString:
		return Condition(t.text), nil
	case tkNumber:
		op := Condition(t.text)
		if !op.Numeric {
			return Operand{}, fmt.Errorf("%w: bad number %q at offset %d", types.ErrSyntax, t.text, t.pos)
		}
		return op, nil
	default:
		return Operand{}, p.unexpected(t)
	}
}

func parseOperator(t token) (Operator, error) {
	for op, s := range operatorText {
		if op != OpIn && s == t.text {
			return op, nil
		}
	}
	return OpUnspecified, fmt.Errorf("%w: %q at offset %d", types.ErrInvalidOperator, t.text, t.pos)
}

func isReserved(word string) bool {
	switch strings.ToLower(word) {
	case "and", "or", "not", "in", "true", "false":
		return true
	}
	return false
}
