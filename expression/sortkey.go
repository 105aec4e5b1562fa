package expression

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/dynaqlabs/dynaq/schema"
)

// SortKeyOp is a comparison operator of a sort key condition.
type SortKeyOp int

// Sort key comparison operators.
const (
	OpEq SortKeyOp = iota
	OpLt
	OpLe
	OpGt
	OpGe
	OpBetween
	OpBeginsWith
)

func (op SortKeyOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpBetween:
		return "BETWEEN"
	case OpBeginsWith:
		return "begins_with"
	}

	return "?"
}

// SortKeyCondition is a parsed sort key comparison. Upper is only set
// for BETWEEN.
type SortKeyCondition struct {
	Op    SortKeyOp
	Value Value
	Upper Value
}

// ParseSortKeyCondition parses a sort key condition:
//
//	cond := ( "=" | "==" | "<" | "<=" | ">" | ">=" ) value
//	      | BETWEEN value [AND] value
//	      | BEGINS_WITH value
//	      | value
//
// A bare value is an equality condition.
func ParseSortKeyCondition(input string) (*SortKeyCondition, error) {
	p, err := NewParser(input)
	if err != nil {
		return nil, err
	}

	cond, err := p.parseSortKeyCondition()
	if err != nil {
		return nil, err
	}

	if err := p.expectEOF(); err != nil {
		return nil, err
	}

	return cond, nil
}

func (p *Parser) parseSortKeyCondition() (*SortKeyCondition, error) {
	var op SortKeyOp

	switch p.curToken().Type {
	case EQ, EQEQ:
		op = OpEq
	case LT:
		op = OpLt
	case LTE:
		op = OpLe
	case GT:
		op = OpGt
	case GTE:
		op = OpGe
	case BETWEEN:
		return p.parseBetweenCondition()
	case BEGINSWITH:
		return p.parseBeginsWithCondition()
	default:
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		return &SortKeyCondition{Op: OpEq, Value: v}, nil
	}

	p.nextToken()

	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return &SortKeyCondition{Op: op, Value: v}, nil
}

func (p *Parser) parseBetweenCondition() (*SortKeyCondition, error) {
	p.nextToken() // BETWEEN

	lower, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	// The AND between the bounds is optional.
	if p.curTokenIs(AND) {
		p.nextToken()
	}

	upper, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return &SortKeyCondition{Op: OpBetween, Value: lower, Upper: upper}, nil
}

func (p *Parser) parseBeginsWithCondition() (*SortKeyCondition, error) {
	tok := p.curToken()
	p.nextToken() // BEGINS_WITH

	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	switch v.Kind() {
	case KindString, KindBinary:
		return &SortKeyCondition{Op: OpBeginsWith, Value: v}, nil
	}

	return nil, &ParseError{
		Kind:  ParseUnexpectedToken,
		Token: tok,
		Msg:   "begins_with takes a string or binary prefix, got " + string(v.Kind()),
	}
}

// Resolve checks the condition values against the sort key type. In
// strict mode the literal type must match the key type exactly. In
// non-strict mode mismatched scalars are coerced to the key type when
// the conversion is unambiguous.
func (c *SortKeyCondition) Resolve(key schema.Key, strict bool) (*SortKeyCondition, error) {
	v, err := resolveKeyValue(c.Value, key, strict)
	if err != nil {
		return nil, err
	}

	resolved := &SortKeyCondition{Op: c.Op, Value: v}

	if c.Upper != nil {
		upper, err := resolveKeyValue(c.Upper, key, strict)
		if err != nil {
			return nil, err
		}

		resolved.Upper = upper
	}

	return resolved, nil
}

func resolveKeyValue(v Value, key schema.Key, strict bool) (Value, error) {
	if matchesKeyType(v, key.Type) {
		return v, nil
	}

	coerced := coerceScalar(v, key.Type)

	if strict {
		terr := &TypeError{
			Kind:     TypeSortKeyTypeMismatch,
			Expected: string(key.Type),
			Actual:   string(v.Kind()),
		}
		if coerced != nil {
			terr.Suggest = coerced.Render()
		}

		return nil, terr
	}

	if coerced == nil {
		return nil, &TypeError{
			Kind:     TypeAmbiguousCoercion,
			Expected: string(key.Type),
			Actual:   string(v.Kind()),
		}
	}

	return coerced, nil
}

func matchesKeyType(v Value, kt schema.KeyType) bool {
	switch kt {
	case schema.KeyTypeString:
		return v.Kind() == KindString
	case schema.KeyTypeNumber:
		return v.Kind() == KindNumber
	case schema.KeyTypeBinary:
		return v.Kind() == KindBinary
	}

	return false
}

// coerceScalar converts a scalar literal to the key type, or returns
// nil when no unambiguous conversion exists.
func coerceScalar(v Value, kt schema.KeyType) Value {
	switch kt {
	case schema.KeyTypeString:
		if n, ok := v.(*Number); ok {
			return &String{Value: n.Value}
		}
	case schema.KeyTypeNumber:
		if s, ok := v.(*String); ok && validNumber(s.Value) {
			return &Number{Value: s.Value}
		}
	case schema.KeyTypeBinary:
		if s, ok := v.(*String); ok {
			if decoded, err := hex.DecodeString(strings.TrimPrefix(s.Value, "0x")); err == nil && len(decoded) > 0 {
				return &Binary{Value: decoded}
			}
		}
	}

	return nil
}

func validNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)

	return err == nil && s != ""
}
