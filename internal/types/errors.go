package types

import "errors"

// Sentinel errors for rulefold operations.
var (
	// ErrNoParameters indicates an empty match parameter list.
	ErrNoParameters = errors.New("no match parameters configured")

	// ErrArityMismatch indicates tuples of different lengths in one cluster.
	ErrArityMismatch = errors.New("match tuple arity mismatch")

	// ErrExpansionTooLarge indicates a cluster expands past the configured cap.
	ErrExpansionTooLarge = errors.New("or-expansion exceeds limit")

	// ErrUnsoundFold indicates the folded set no longer expands to the original.
	ErrUnsoundFold = errors.New("folded patterns do not reproduce original tuples")

	// ErrUnknownMode indicates an (instrument, filekind) pair with no definition.
	ErrUnknownMode = errors.New("unknown instrument/filekind mode")

	// ErrEmptyExpression indicates a relevance expression with no content.
	ErrEmptyExpression = errors.New("expression is empty")

	// ErrSyntax indicates a malformed relevance expression.
	ErrSyntax = errors.New("expression syntax error")

	// ErrExpressionTooDeep indicates nesting beyond MaxExpressionDepth.
	ErrExpressionTooDeep = errors.New("expression exceeds maximum depth")

	// ErrTooManyInValues indicates an IN list exceeds MaxInOperatorValues.
	ErrTooManyInValues = errors.New("IN operator has too many values")

	// ErrInvalidOperator indicates an unknown comparison operator.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrFieldNotFound indicates an expression references a missing header key.
	ErrFieldNotFound = errors.New("field not found")
)
