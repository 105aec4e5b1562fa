package expression

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Placeholders accumulates expression attribute names and values. The
// same attribute name always maps to the same #pN placeholder, and
// literals with the same canonical rendering share one :vN placeholder.
type Placeholders struct {
	names     map[string]string
	nameRefs  map[string]string
	values    map[string]types.AttributeValue
	valueRefs map[string]string
}

// NewPlaceholders creates an empty placeholder registry.
func NewPlaceholders() *Placeholders {
	return &Placeholders{
		names:     map[string]string{},
		nameRefs:  map[string]string{},
		values:    map[string]types.AttributeValue{},
		valueRefs: map[string]string{},
	}
}

// Name registers an attribute name and returns its #pN placeholder.
func (ph *Placeholders) Name(name string) string {
	if ref, ok := ph.nameRefs[name]; ok {
		return ref
	}

	ref := fmt.Sprintf("#p%d", len(ph.names))
	ph.names[ref] = name
	ph.nameRefs[name] = ref

	return ref
}

// Value registers a literal value and returns its :vN placeholder.
func (ph *Placeholders) Value(v Value) string {
	key := v.Render()
	if ref, ok := ph.valueRefs[key]; ok {
		return ref
	}

	ref := fmt.Sprintf(":v%d", len(ph.values))
	ph.values[ref] = v.ToAttributeValue()
	ph.valueRefs[key] = ref

	return ref
}

// Names returns the placeholder to attribute name map, or nil when no
// name placeholder was issued.
func (ph *Placeholders) Names() map[string]string {
	if len(ph.names) == 0 {
		return nil
	}

	return ph.names
}

// Values returns the placeholder to attribute value map, or nil when no
// value placeholder was issued.
func (ph *Placeholders) Values() map[string]types.AttributeValue {
	if len(ph.values) == 0 {
		return nil
	}

	return ph.values
}
