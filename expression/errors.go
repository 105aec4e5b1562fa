package expression

import "fmt"

// LexErrorKind classifies malformed tokens.
type LexErrorKind string

const (
	// LexUnterminatedString a string literal with no closing quote
	LexUnterminatedString LexErrorKind = "UnterminatedString"
	// LexUnterminatedBinary a binary literal with no closing quote
	LexUnterminatedBinary LexErrorKind = "UnterminatedBinary"
	// LexInvalidEscape an unknown or malformed escape sequence
	LexInvalidEscape LexErrorKind = "InvalidEscape"
	// LexUnexpectedChar a character no token can start with
	LexUnexpectedChar LexErrorKind = "UnexpectedChar"
)

// LexError reports a malformed token at a byte offset of the input.
type LexError struct {
	Kind   LexErrorKind
	Offset int
	Ch     rune
}

func (e *LexError) Error() string {
	switch e.Kind {
	case LexUnterminatedString:
		return fmt.Sprintf("unterminated string literal starting at offset %d", e.Offset)
	case LexUnterminatedBinary:
		return fmt.Sprintf("unterminated binary literal starting at offset %d", e.Offset)
	case LexInvalidEscape:
		return fmt.Sprintf("invalid escape sequence %q at offset %d", e.Ch, e.Offset)
	}

	return fmt.Sprintf("unexpected character %q at offset %d", e.Ch, e.Offset)
}

// ParseErrorKind classifies grammar violations.
type ParseErrorKind string

const (
	// ParseUnexpectedToken a token the grammar does not allow at this position
	ParseUnexpectedToken ParseErrorKind = "UnexpectedToken"
	// ParseUnbalancedDelimiter input ended inside a bracketed construct
	ParseUnbalancedDelimiter ParseErrorKind = "UnbalancedDelimiter"
	// ParseHeterogeneousSet set elements of mixed attribute kinds
	ParseHeterogeneousSet ParseErrorKind = "HeterogeneousSet"
	// ParseEmptySet a set literal without elements
	ParseEmptySet ParseErrorKind = "EmptySet"
)

// ParseError reports a grammar violation at a token.
type ParseError struct {
	Kind  ParseErrorKind
	Token Token
	Msg   string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseUnbalancedDelimiter:
		return fmt.Sprintf("unbalanced delimiter: %s", e.Msg)
	case ParseHeterogeneousSet:
		return fmt.Sprintf("set elements must all be the same type: %s", e.Msg)
	case ParseEmptySet:
		return "set literals must have at least one element"
	}

	if e.Msg != "" {
		return fmt.Sprintf("unexpected token %q at offset %d: %s", e.Token.Literal, e.Token.Pos, e.Msg)
	}

	return fmt.Sprintf("unexpected token %q at offset %d", e.Token.Literal, e.Token.Pos)
}

// TypeErrorKind classifies literal/schema type conflicts.
type TypeErrorKind string

const (
	// TypeSortKeyTypeMismatch strict mode literal kind differs from the sort key type
	TypeSortKeyTypeMismatch TypeErrorKind = "SortKeyTypeMismatch"
	// TypeAmbiguousCoercion non-strict mode cannot reinterpret the literal safely
	TypeAmbiguousCoercion TypeErrorKind = "AmbiguousCoercion"
)

// TypeError reports a conflict between a literal and the table's declared key type.
type TypeError struct {
	Kind     TypeErrorKind
	Expected string
	Actual   string
	// Suggest carries the expression the user probably intended, when one exists.
	Suggest string
}

func (e *TypeError) Error() string {
	msg := fmt.Sprintf("invalid type: expected %s, but actual type is %s", e.Expected, e.Actual)
	if e.Kind == TypeAmbiguousCoercion {
		msg = fmt.Sprintf("cannot reinterpret %s value as %s", e.Actual, e.Expected)
	}

	if e.Suggest != "" {
		msg = fmt.Sprintf("%s\nDid you intend '%s'?", msg, e.Suggest)
	}

	return msg
}

// SemanticError reports a well-formed input the compiler refuses,
// such as an empty path or the removal of a protected attribute.
type SemanticError struct {
	Msg string
}

func (e *SemanticError) Error() string {
	return e.Msg
}
