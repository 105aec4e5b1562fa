package expression

import "strings"

// TokenType represents the type of a token
type TokenType string

// Token represents a token of the literal and expression language.
// Pos is the byte offset of the token's first character in the input.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

const (
	// EOF end of the input
	EOF TokenType = "EOF"

	// IDENT bare identifier (attribute name, keyword candidate, true/false/null)
	IDENT TokenType = "IDENT"
	// QUOTED backtick-quoted identifier, Literal holds the decoded name
	QUOTED TokenType = "QUOTED"
	// STRING quoted string literal, Literal holds the decoded text
	STRING TokenType = "STRING"
	// NUMBER decimal number literal kept as text
	NUMBER TokenType = "NUMBER"
	// BINARY binary literal, Literal holds the decoded bytes
	BINARY TokenType = "BINARY"

	// LBRACE left curly brace delimiter
	LBRACE TokenType = "{"
	// RBRACE right curly brace delimiter
	RBRACE TokenType = "}"
	// LBRACKET left square bracket delimiter
	LBRACKET TokenType = "["
	// RBRACKET right square bracket delimiter
	RBRACKET TokenType = "]"
	// LTLT set literal opening delimiter
	LTLT TokenType = "<<"
	// GTGT set literal closing delimiter
	GTGT TokenType = ">>"
	// LPAREN left parentheses delimiter
	LPAREN TokenType = "("
	// RPAREN right parentheses delimiter
	RPAREN TokenType = ")"
	// COMMA element and action separator
	COMMA TokenType = ","
	// DOT path segment separator
	DOT TokenType = "."
	// COLON map key/value separator
	COLON TokenType = ":"

	// EQ comparator equal
	EQ TokenType = "="
	// EQEQ comparator equal, double equal alias
	EQEQ TokenType = "=="
	// LT comparator less than
	LT TokenType = "<"
	// LTE comparator less than or equal
	LTE TokenType = "<="
	// GT comparator greater than
	GT TokenType = ">"
	// GTE comparator greater than or equal
	GTE TokenType = ">="
	// PLUS addition operator
	PLUS TokenType = "+"
	// MINUS subtraction operator
	MINUS TokenType = "-"

	// BETWEEN compare against an inclusive range
	BETWEEN TokenType = "BETWEEN"
	// AND range separator keyword
	AND TokenType = "AND"
	// BEGINSWITH prefix match keyword
	BEGINSWITH TokenType = "BEGINS_WITH"
)

var keywords = map[string]TokenType{
	"BETWEEN":     BETWEEN,
	"AND":         AND,
	"BEGINS_WITH": BEGINSWITH,
}

// LookupIdent checks if the ident is a keyword. Keywords are case-insensitive.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}

	return IDENT
}
