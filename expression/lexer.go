package expression

import (
	"encoding/base64"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Lexer converts raw input text into tokens of the literal and
// expression language.
type Lexer struct {
	input    string
	position int
	// current position in input (points to current char)
	readPosition int
	// current reading position in input (after current char)
	ch rune // current char under examination, 0 at end of input

	prevType TokenType
}

var singleChar = map[rune]TokenType{
	'{': LBRACE,
	'}': RBRACE,
	'[': LBRACKET,
	']': RBRACKET,
	'(': LPAREN,
	')': RPAREN,
	',': COMMA,
	'.': DOT,
	':': COLON,
}

// operandEnd holds the token types a value can end with. A following
// '+' or '-' is an operator after these, and a number sign otherwise.
var operandEnd = map[TokenType]bool{
	IDENT:    true,
	QUOTED:   true,
	STRING:   true,
	NUMBER:   true,
	BINARY:   true,
	RBRACKET: true,
	RBRACE:   true,
	RPAREN:   true,
	GTGT:     true,
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()

	return l
}

// Tokenize converts the whole input into a token slice ending with an
// EOF token, or fails with a *LexError naming the offending offset.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	tokens := []Token{}

	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)

		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++

		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])

	return r
}

// NextToken looks up the next token
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	tok, err := l.scanToken()
	if err != nil {
		return Token{}, err
	}

	l.prevType = tok.Type

	return tok, nil
}

func (l *Lexer) scanToken() (Token, error) {
	pos := l.position

	if single, ok := singleChar[l.ch]; ok {
		l.readChar()

		return Token{Type: single, Literal: string(single), Pos: pos}, nil
	}

	switch l.ch {
	case 0:
		return Token{Type: EOF, Literal: "", Pos: pos}, nil
	case '=':
		return l.twoCharToken(EQ, '=', EQEQ), nil
	case '<':
		if l.peekChar() == '<' {
			return l.twoCharToken(LT, '<', LTLT), nil
		}

		return l.twoCharToken(LT, '=', LTE), nil
	case '>':
		if l.peekChar() == '>' {
			return l.twoCharToken(GT, '>', GTGT), nil
		}

		return l.twoCharToken(GT, '=', GTE), nil
	case '+', '-':
		if isDigit(l.peekChar()) && !operandEnd[l.prevType] {
			return l.readNumber(), nil
		}

		op := PLUS
		if l.ch == '-' {
			op = MINUS
		}

		l.readChar()

		return Token{Type: op, Literal: string(op), Pos: pos}, nil
	case '"':
		return l.readDoubleQuoteString()
	case '\'':
		return l.readSingleQuoteString()
	case '`':
		return l.readQuotedIdentifier()
	}

	if isDigit(l.ch) {
		return l.readNumber(), nil
	}

	if isIDStart(l.ch) {
		if l.ch == 'b' && (l.peekChar() == '"' || l.peekChar() == '\'') {
			return l.readBinary()
		}

		if strings.HasPrefix(l.input[l.position:], `b64"`) {
			return l.readBase64()
		}

		return l.readIdentifier(), nil
	}

	return Token{}, &LexError{Kind: LexUnexpectedChar, Offset: pos, Ch: l.ch}
}

func (l *Lexer) twoCharToken(single TokenType, second rune, double TokenType) Token {
	pos := l.position

	if l.peekChar() == second {
		l.readChar()
		l.readChar()

		return Token{Type: double, Literal: string(double), Pos: pos}
	}

	l.readChar()

	return Token{Type: single, Literal: string(single), Pos: pos}
}

func (l *Lexer) readIdentifier() Token {
	pos := l.position

	for isIDContinue(l.ch) {
		l.readChar()
	}

	literal := l.input[pos:l.position]

	return Token{Type: LookupIdent(literal), Literal: literal, Pos: pos}
}

// readNumber scans [+-]? digits ('.' digits)? ([eE] [+-]? digits)?.
// The dot and exponent are consumed only when digits follow, so a
// trailing path separator is left alone.
func (l *Lexer) readNumber() Token {
	pos := l.position

	if l.ch == '+' || l.ch == '-' {
		l.readChar()
	}

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()

		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) {
			l.readChar()
		} else if next == '+' || next == '-' {
			if l.exponentDigitFollows() {
				l.readChar()
				l.readChar()
			}
		}

		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return Token{Type: NUMBER, Literal: l.input[pos:l.position], Pos: pos}
}

func (l *Lexer) exponentDigitFollows() bool {
	rest := l.input[l.readPosition:]
	if len(rest) < 2 {
		return false
	}

	return isDigit(rune(rest[1]))
}

func (l *Lexer) readDoubleQuoteString() (Token, error) {
	pos := l.position
	l.readChar() // consume opening quote

	var out strings.Builder

	for {
		switch l.ch {
		case 0:
			return Token{}, &LexError{Kind: LexUnterminatedString, Offset: pos}
		case '"':
			l.readChar()

			return Token{Type: STRING, Literal: out.String(), Pos: pos}, nil
		case '\\':
			if err := l.readEscape(&out); err != nil {
				return Token{}, err
			}
		default:
			out.WriteRune(l.ch)
			l.readChar()
		}
	}
}

// readEscape decodes one escape sequence of a double quoted string.
//
//	\0 \b \f \n \r \t \" \' \\ \/ \uXXXX
//
// Non-BMP characters are written as UTF-16 surrogate pairs,
// e.g. "𝄞".
func (l *Lexer) readEscape(out *strings.Builder) error {
	escPos := l.position
	l.readChar() // consume backslash

	switch l.ch {
	case 0:
		return &LexError{Kind: LexUnterminatedString, Offset: escPos}
	case '0':
		out.WriteByte(0)
	case 'b':
		out.WriteByte('\b')
	case 'f':
		out.WriteByte('\f')
	case 'n':
		out.WriteByte('\n')
	case 'r':
		out.WriteByte('\r')
	case 't':
		out.WriteByte('\t')
	case '"', '\'', '\\', '/':
		out.WriteRune(l.ch)
	case 'u':
		return l.readUnicodeEscape(out, escPos)
	default:
		return &LexError{Kind: LexInvalidEscape, Offset: escPos, Ch: l.ch}
	}

	l.readChar()

	return nil
}

func (l *Lexer) readUnicodeEscape(out *strings.Builder, escPos int) error {
	l.readChar() // consume 'u'

	u1, err := l.readHex4(escPos)
	if err != nil {
		return err
	}

	if !utf16.IsSurrogate(rune(u1)) {
		out.WriteRune(rune(u1))

		return nil
	}

	// A surrogate must be followed by its pair to form one character.
	if l.ch != '\\' {
		return &LexError{Kind: LexInvalidEscape, Offset: escPos, Ch: 'u'}
	}

	l.readChar()

	if l.ch != 'u' {
		return &LexError{Kind: LexInvalidEscape, Offset: escPos, Ch: l.ch}
	}

	l.readChar()

	u2, err := l.readHex4(escPos)
	if err != nil {
		return err
	}

	r := utf16.DecodeRune(rune(u1), rune(u2))
	if r == utf8.RuneError {
		return &LexError{Kind: LexInvalidEscape, Offset: escPos, Ch: 'u'}
	}

	out.WriteRune(r)

	return nil
}

func (l *Lexer) readHex4(escPos int) (uint16, error) {
	var result uint16

	for i := 0; i < 4; i++ {
		if l.ch == 0 {
			return 0, &LexError{Kind: LexUnterminatedString, Offset: escPos}
		}

		if !isHexDigit(l.ch) {
			return 0, &LexError{Kind: LexInvalidEscape, Offset: escPos, Ch: l.ch}
		}

		result = result<<4 + uint16(hexValue(l.ch))
		l.readChar()
	}

	return result, nil
}

// readSingleQuoteString scans a single quoted string. The content is
// taken literally except that \' embeds a quote character.
func (l *Lexer) readSingleQuoteString() (Token, error) {
	pos := l.position
	l.readChar()

	var out strings.Builder

	for {
		switch l.ch {
		case 0:
			return Token{}, &LexError{Kind: LexUnterminatedString, Offset: pos}
		case '\'':
			l.readChar()

			return Token{Type: STRING, Literal: out.String(), Pos: pos}, nil
		case '\\':
			if l.peekChar() == '\'' {
				out.WriteByte('\'')
				l.readChar()
				l.readChar()

				continue
			}

			out.WriteByte('\\')
			l.readChar()
		default:
			out.WriteRune(l.ch)
			l.readChar()
		}
	}
}

// readQuotedIdentifier scans a backtick quoted identifier. A doubled
// backtick decodes to a single literal backtick.
func (l *Lexer) readQuotedIdentifier() (Token, error) {
	pos := l.position
	l.readChar()

	var out strings.Builder

	for {
		switch l.ch {
		case 0:
			return Token{}, &LexError{Kind: LexUnterminatedString, Offset: pos}
		case '`':
			if l.peekChar() == '`' {
				out.WriteByte('`')
				l.readChar()
				l.readChar()

				continue
			}

			l.readChar()

			return Token{Type: QUOTED, Literal: out.String(), Pos: pos}, nil
		default:
			out.WriteRune(l.ch)
			l.readChar()
		}
	}
}

// readBinary scans b"…" (escapes and line continuation) or b'…' (raw,
// single line). The decoded bytes are carried in the token literal.
func (l *Lexer) readBinary() (Token, error) {
	pos := l.position
	l.readChar() // consume 'b'

	if l.ch == '\'' {
		return l.readRawBinary(pos)
	}

	l.readChar() // consume opening quote

	var out []byte

	for {
		switch l.ch {
		case 0:
			return Token{}, &LexError{Kind: LexUnterminatedBinary, Offset: pos}
		case '"':
			l.readChar()

			return Token{Type: BINARY, Literal: string(out), Pos: pos}, nil
		case '\\':
			decoded, err := l.readByteEscape(pos)
			if err != nil {
				return Token{}, err
			}

			out = append(out, decoded...)
		default:
			out = append(out, string(l.ch)...)
			l.readChar()
		}
	}
}

// readByteEscape decodes one escape of a b"…" literal: \n \r \t \0
// \\ \' \" \xHH, or a backslash before a line break which skips the
// following whitespace so long literals can be split across lines.
func (l *Lexer) readByteEscape(start int) ([]byte, error) {
	escPos := l.position
	l.readChar() // consume backslash

	switch l.ch {
	case 0:
		return nil, &LexError{Kind: LexUnterminatedBinary, Offset: start}
	case 'n':
		l.readChar()

		return []byte{'\n'}, nil
	case 'r':
		l.readChar()

		return []byte{'\r'}, nil
	case 't':
		l.readChar()

		return []byte{'\t'}, nil
	case '0':
		l.readChar()

		return []byte{0}, nil
	case '\\', '\'', '"':
		b := byte(l.ch)
		l.readChar()

		return []byte{b}, nil
	case '\r', '\n':
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}

		return nil, nil
	case 'x':
		l.readChar()

		var b byte

		for i := 0; i < 2; i++ {
			if l.ch == 0 {
				return nil, &LexError{Kind: LexUnterminatedBinary, Offset: start}
			}

			if !isHexDigit(l.ch) {
				return nil, &LexError{Kind: LexInvalidEscape, Offset: escPos, Ch: l.ch}
			}

			b = b<<4 | hexValue(l.ch)
			l.readChar()
		}

		return []byte{b}, nil
	}

	return nil, &LexError{Kind: LexInvalidEscape, Offset: escPos, Ch: l.ch}
}

func (l *Lexer) readRawBinary(pos int) (Token, error) {
	l.readChar() // consume opening quote

	var out []byte

	for {
		switch l.ch {
		case 0, '\n', '\r':
			return Token{}, &LexError{Kind: LexUnterminatedBinary, Offset: pos}
		case '\'':
			l.readChar()

			return Token{Type: BINARY, Literal: string(out), Pos: pos}, nil
		default:
			out = append(out, string(l.ch)...)
			l.readChar()
		}
	}
}

func (l *Lexer) readBase64() (Token, error) {
	pos := l.position

	// consume b64"
	for i := 0; i < 4; i++ {
		l.readChar()
	}

	start := l.position

	for l.ch != '"' {
		if l.ch == 0 {
			return Token{}, &LexError{Kind: LexUnterminatedBinary, Offset: pos}
		}

		l.readChar()
	}

	encoded := l.input[start:l.position]
	l.readChar() // consume closing quote

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(encoded)
	}

	if err != nil {
		return Token{}, &LexError{Kind: LexInvalidEscape, Offset: pos, Ch: '"'}
	}

	return Token{Type: BINARY, Literal: string(decoded), Pos: pos}, nil
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}
