package expression

import "strings"

// RhsKind tags the shape of a SET right-hand side.
type RhsKind int

// Right-hand side shapes of a SET action.
const (
	RhsLiteral RhsKind = iota
	RhsPath
	RhsPlus
	RhsMinus
	RhsListAppend
	RhsIfNotExists
)

// Rhs is the right-hand side of a SET action:
//
//	rhs := literal
//	     | path
//	     | operand ( "+" | "-" ) operand
//	     | list_append(rhs, rhs)
//	     | if_not_exists(path, rhs)
//
// where operand := path | literal.
type Rhs struct {
	Kind    RhsKind
	Literal Value
	Path    *AttributePath

	// Left/Right hold the operands of +, -, and list_append, and the
	// path/fallback pair of if_not_exists.
	Left  *Rhs
	Right *Rhs
}

// SetAction assigns the value of Rhs to Path.
type SetAction struct {
	Path *AttributePath
	Rhs  *Rhs
}

// ParseSetActions parses the comma separated action list of a SET
// update expression, without the leading SET keyword.
func ParseSetActions(input string) ([]SetAction, error) {
	p, err := NewParser(input)
	if err != nil {
		return nil, err
	}

	actions := []SetAction{}

	for {
		action, err := p.parseSetAction()
		if err != nil {
			return nil, err
		}

		actions = append(actions, action)

		if p.curTokenIs(COMMA) {
			p.nextToken()

			continue
		}

		if err := p.expectEOF(); err != nil {
			return nil, err
		}

		return actions, nil
	}
}

func (p *Parser) parseSetAction() (SetAction, error) {
	path, err := p.parsePath()
	if err != nil {
		return SetAction{}, err
	}

	if err := p.expect(EQ); err != nil {
		return SetAction{}, err
	}

	rhs, err := p.parseRhs()
	if err != nil {
		return SetAction{}, err
	}

	return SetAction{Path: path, Rhs: rhs}, nil
}

func (p *Parser) parseRhs() (*Rhs, error) {
	left, err := p.parseRhsOperand()
	if err != nil {
		return nil, err
	}

	switch p.curToken().Type {
	case PLUS:
		p.nextToken()

		right, err := p.parseRhsOperand()
		if err != nil {
			return nil, err
		}

		return &Rhs{Kind: RhsPlus, Left: left, Right: right}, nil
	case MINUS:
		p.nextToken()

		right, err := p.parseRhsOperand()
		if err != nil {
			return nil, err
		}

		return &Rhs{Kind: RhsMinus, Left: left, Right: right}, nil
	}

	return left, nil
}

// parseRhsOperand parses a single operand: a function call, a path, or
// a literal. An identifier followed by "(" is a function, followed by
// "." or "[" or nothing it is a path.
func (p *Parser) parseRhsOperand() (*Rhs, error) {
	tok := p.curToken()

	if tok.Type == IDENT && p.peekToken().Type == LPAREN {
		return p.parseRhsFunction()
	}

	switch tok.Type {
	case IDENT, QUOTED, BETWEEN, AND, BEGINSWITH:
		// Keyword tokens double as attribute names here, same as on the
		// left-hand side of the assignment.
		if !isValueKeyword(tok) {
			path, err := p.parsePath()
			if err != nil {
				return nil, err
			}

			return &Rhs{Kind: RhsPath, Path: path}, nil
		}
	}

	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return &Rhs{Kind: RhsLiteral, Literal: v}, nil
}

func isValueKeyword(tok Token) bool {
	if tok.Type != IDENT {
		return false
	}

	switch tok.Literal {
	case "true", "false", "null":
		return true
	}

	return false
}

func (p *Parser) parseRhsFunction() (*Rhs, error) {
	name := p.curToken()
	p.nextToken() // function name
	p.nextToken() // '('

	switch strings.ToLower(name.Literal) {
	case "list_append":
		left, err := p.parseRhs()
		if err != nil {
			return nil, err
		}

		if err := p.expect(COMMA); err != nil {
			return nil, err
		}

		right, err := p.parseRhs()
		if err != nil {
			return nil, err
		}

		if err := p.expect(RPAREN); err != nil {
			return nil, err
		}

		return &Rhs{Kind: RhsListAppend, Left: left, Right: right}, nil
	case "if_not_exists":
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}

		if err := p.expect(COMMA); err != nil {
			return nil, err
		}

		fallback, err := p.parseRhs()
		if err != nil {
			return nil, err
		}

		if err := p.expect(RPAREN); err != nil {
			return nil, err
		}

		return &Rhs{
			Kind:  RhsIfNotExists,
			Left:  &Rhs{Kind: RhsPath, Path: path},
			Right: fallback,
		}, nil
	}

	return nil, &ParseError{
		Kind:  ParseUnexpectedToken,
		Token: name,
		Msg:   "unknown function " + name.Literal,
	}
}

// ParseRemoveActions parses the comma separated path list of a REMOVE
// update expression, without the leading REMOVE keyword.
func ParseRemoveActions(input string) ([]*AttributePath, error) {
	p, err := NewParser(input)
	if err != nil {
		return nil, err
	}

	paths := []*AttributePath{}

	for {
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}

		paths = append(paths, path)

		if p.curTokenIs(COMMA) {
			p.nextToken()

			continue
		}

		if err := p.expectEOF(); err != nil {
			return nil, err
		}

		return paths, nil
	}
}
