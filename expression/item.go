package expression

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ParseItem parses a full item document. The top level must be a map.
// When inferSets is true, homogeneous scalar lists anywhere in the
// document become sets.
func ParseItem(input string, inferSets bool) (*Map, error) {
	p, err := NewParser(input)
	if err != nil {
		return nil, err
	}

	if !p.curTokenIs(LBRACE) {
		return nil, p.unexpected("an item must be a map")
	}

	v, err := p.parseMap()
	if err != nil {
		return nil, err
	}

	if err := p.expectEOF(); err != nil {
		return nil, err
	}

	m := v.(*Map)

	if inferSets {
		m = InferSets(m).(*Map)
	}

	return m, nil
}

// ToItem converts the map into item attributes, merged over the given
// initial attributes. Parsed attributes win on name collision, so key
// values passed as initial attributes can still be overridden by the
// document.
func (m *Map) ToItem(initial map[string]types.AttributeValue) map[string]types.AttributeValue {
	item := make(map[string]types.AttributeValue, len(initial)+len(m.Entries))

	for name, av := range initial {
		item[name] = av
	}

	for _, e := range m.Entries {
		item[e.Key] = e.Value.ToAttributeValue()
	}

	return item
}
