package expression

import (
	"strconv"
	"strings"
)

// PathElement is one step of a document path: an attribute name or a
// list index.
type PathElement struct {
	Name  string
	Index int
	IsIdx bool
}

// AttributePath addresses a nested attribute inside an item, e.g.
// families[0].parents or map.`odd name`.
type AttributePath struct {
	Elements []PathElement
}

// Root returns the top-level attribute name of the path.
func (ap *AttributePath) Root() string {
	return ap.Elements[0].Name
}

// String renders the path back in source form. Names that need quoting
// come back in backticks.
func (ap *AttributePath) String() string {
	var b strings.Builder

	for i, e := range ap.Elements {
		if e.IsIdx {
			b.WriteString("[")
			b.WriteString(strconv.Itoa(e.Index))
			b.WriteString("]")

			continue
		}

		if i > 0 {
			b.WriteString(".")
		}

		b.WriteString(quoteIdentifier(e.Name))
	}

	return b.String()
}

func quoteIdentifier(name string) string {
	if isPlainIdentifier(name) {
		return name
	}

	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func isPlainIdentifier(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		if i == 0 && !isIDStart(r) {
			return false
		}

		if i > 0 && !isIDContinue(r) {
			return false
		}
	}

	return true
}

// ParsePath parses a single document path.
func ParsePath(input string) (*AttributePath, error) {
	p, err := NewParser(input)
	if err != nil {
		return nil, err
	}

	ap, err := p.parsePath()
	if err != nil {
		return nil, err
	}

	if err := p.expectEOF(); err != nil {
		return nil, err
	}

	return ap, nil
}

// parsePath parses attribute path syntax:
//
//	path := segment ( "." segment | "[" number "]" )*
func (p *Parser) parsePath() (*AttributePath, error) {
	name, err := p.parsePathName()
	if err != nil {
		return nil, err
	}

	ap := &AttributePath{Elements: []PathElement{{Name: name}}}

	for {
		switch p.curToken().Type {
		case DOT:
			p.nextToken()

			name, err := p.parsePathName()
			if err != nil {
				return nil, err
			}

			ap.Elements = append(ap.Elements, PathElement{Name: name})
		case LBRACKET:
			p.nextToken()

			idx, err := p.parsePathIndex()
			if err != nil {
				return nil, err
			}

			if err := p.expect(RBRACKET); err != nil {
				return nil, err
			}

			ap.Elements = append(ap.Elements, PathElement{Index: idx, IsIdx: true})
		default:
			return ap, nil
		}
	}
}

func (p *Parser) parsePathName() (string, error) {
	tok := p.curToken()

	switch tok.Type {
	case IDENT, QUOTED, BETWEEN, AND, BEGINSWITH:
		p.nextToken()

		return tok.Literal, nil
	}

	return "", p.unexpected("expected an attribute name")
}

func (p *Parser) parsePathIndex() (int, error) {
	tok := p.curToken()
	if tok.Type != NUMBER {
		return 0, p.unexpected("expected a list index")
	}

	idx, err := strconv.Atoi(tok.Literal)
	if err != nil || idx < 0 {
		return 0, &ParseError{Kind: ParseUnexpectedToken, Token: tok, Msg: "list index must be a non-negative integer"}
	}

	p.nextToken()

	return idx, nil
}
