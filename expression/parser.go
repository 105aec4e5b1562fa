package expression

// Parser is a recursive descent parser over a token stream. One parser
// instance handles a single input and is discarded afterwards.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser tokenizes the input and creates a parser for it
func NewParser(input string) (*Parser, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}

	return &Parser{tokens: tokens}, nil
}

func (p *Parser) curToken() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekToken() Token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}

	return p.tokens[p.pos+1]
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken().Type == t
}

// expect consumes the current token when it matches, and fails with an
// unexpected token error otherwise.
func (p *Parser) expect(t TokenType) error {
	if !p.curTokenIs(t) {
		if p.curTokenIs(EOF) {
			return &ParseError{
				Kind:  ParseUnbalancedDelimiter,
				Token: p.curToken(),
				Msg:   "input ended while expecting " + string(t),
			}
		}

		return &ParseError{
			Kind:  ParseUnexpectedToken,
			Token: p.curToken(),
			Msg:   "expected " + string(t),
		}
	}

	p.nextToken()

	return nil
}

func (p *Parser) expectEOF() error {
	if !p.curTokenIs(EOF) {
		return &ParseError{Kind: ParseUnexpectedToken, Token: p.curToken(), Msg: "expected end of input"}
	}

	return nil
}

func (p *Parser) unexpected(msg string) error {
	tok := p.curToken()
	kind := ParseUnexpectedToken

	if tok.Type == EOF {
		kind = ParseUnbalancedDelimiter
		if msg == "" {
			msg = "unexpected end of input"
		}
	}

	return &ParseError{Kind: kind, Token: tok, Msg: msg}
}

// ParseValue parses a complete literal of the value grammar:
//
//	value := null | bool | number | string | binary | list | map | set
func ParseValue(input string) (Value, error) {
	p, err := NewParser(input)
	if err != nil {
		return nil, err
	}

	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	if err := p.expectEOF(); err != nil {
		return nil, err
	}

	return v, nil
}

func (p *Parser) parseValue() (Value, error) {
	tok := p.curToken()

	switch tok.Type {
	case NUMBER:
		p.nextToken()

		return &Number{Value: tok.Literal}, nil
	case MINUS, PLUS:
		return p.parseSignedNumber()
	case STRING:
		p.nextToken()

		return &String{Value: tok.Literal}, nil
	case BINARY:
		p.nextToken()

		return &Binary{Value: []byte(tok.Literal)}, nil
	case IDENT:
		switch tok.Literal {
		case "true":
			p.nextToken()

			return &Bool{Value: true}, nil
		case "false":
			p.nextToken()

			return &Bool{Value: false}, nil
		case "null":
			p.nextToken()

			return &Null{}, nil
		}

		return nil, p.unexpected("expected a literal value")
	case LBRACKET:
		return p.parseList()
	case LBRACE:
		return p.parseMap()
	case LTLT:
		return p.parseSet()
	}

	return nil, p.unexpected("expected a literal value")
}

// parseSignedNumber handles a sign token the lexer attributed to an
// operator position, e.g. the lower bound in "BETWEEN 1 -5".
func (p *Parser) parseSignedNumber() (Value, error) {
	sign := ""
	if p.curTokenIs(MINUS) {
		sign = "-"
	}

	p.nextToken()

	if !p.curTokenIs(NUMBER) {
		return nil, p.unexpected("expected a number after sign")
	}

	tok := p.curToken()
	p.nextToken()

	return &Number{Value: sign + tok.Literal}, nil
}

func (p *Parser) parseList() (Value, error) {
	p.nextToken() // consume '['

	list := &List{Elements: []Value{}}

	if p.curTokenIs(RBRACKET) {
		p.nextToken()

		return list, nil
	}

	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		list.Elements = append(list.Elements, v)

		if p.curTokenIs(COMMA) {
			p.nextToken()

			continue
		}

		if err := p.expect(RBRACKET); err != nil {
			return nil, err
		}

		return list, nil
	}
}

func (p *Parser) parseMap() (Value, error) {
	p.nextToken() // consume '{'

	m := &Map{}

	if p.curTokenIs(RBRACE) {
		p.nextToken()

		return m, nil
	}

	for {
		key, err := p.parseMapKey()
		if err != nil {
			return nil, err
		}

		if err := p.expect(COLON); err != nil {
			return nil, err
		}

		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		m.Set(key, v)

		if p.curTokenIs(COMMA) {
			p.nextToken()

			continue
		}

		if err := p.expect(RBRACE); err != nil {
			return nil, err
		}

		return m, nil
	}
}

func (p *Parser) parseMapKey() (string, error) {
	tok := p.curToken()

	switch tok.Type {
	case STRING, IDENT, QUOTED:
		p.nextToken()

		return tok.Literal, nil
	}

	return "", p.unexpected("expected a map key")
}

// parseSet parses a << … >> literal into the set type matching its
// element kind. Elements must be non-empty, scalar, and homogeneous;
// duplicates collapse to one member.
func (p *Parser) parseSet() (Value, error) {
	open := p.curToken()
	p.nextToken() // consume '<<'

	if p.curTokenIs(GTGT) {
		return nil, &ParseError{Kind: ParseEmptySet, Token: open}
	}

	elements := []Value{}

	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		elements = append(elements, v)

		if p.curTokenIs(COMMA) {
			p.nextToken()

			continue
		}

		if err := p.expect(GTGT); err != nil {
			return nil, err
		}

		break
	}

	return buildSet(open, elements)
}

func buildSet(open Token, elements []Value) (Value, error) {
	kind := elements[0].Kind()

	for _, e := range elements {
		if !e.Kind().Scalar() || e.Kind() != kind {
			return nil, &ParseError{
				Kind:  ParseHeterogeneousSet,
				Token: open,
				Msg:   "mixes " + string(kind) + " and " + string(e.Kind()),
			}
		}
	}

	switch kind {
	case KindNumber:
		ns := &NumberSet{}

		for _, e := range elements {
			ns.Values = appendUniqueString(ns.Values, e.(*Number).Value)
		}

		return ns, nil
	case KindString:
		ss := &StringSet{}

		for _, e := range elements {
			ss.Values = appendUniqueString(ss.Values, e.(*String).Value)
		}

		return ss, nil
	}

	bs := &BinarySet{}

	for _, e := range elements {
		bs.Values = appendUniqueBytes(bs.Values, e.(*Binary).Value)
	}

	return bs, nil
}

func appendUniqueString(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}

	return append(values, v)
}

func appendUniqueBytes(values [][]byte, v []byte) [][]byte {
	for _, existing := range values {
		if string(existing) == string(v) {
			return values
		}
	}

	return append(values, v)
}
