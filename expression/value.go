package expression

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Kind defines the attribute kind enum, named after the DynamoDB
// attribute type descriptors.
type Kind string

const (
	// KindNull type used to represent the null value
	KindNull Kind = "NULL"
	// KindBool type used to represent booleans
	KindBool Kind = "BOOL"
	// KindNumber type used to represent numbers
	KindNumber Kind = "N"
	// KindString type used to represent strings
	KindString Kind = "S"
	// KindBinary type used to represent binaries
	KindBinary Kind = "B"
	// KindList type used to represent lists
	KindList Kind = "L"
	// KindMap type used to represent maps
	KindMap Kind = "M"
	// KindNumberSet type used to represent sets of numbers
	KindNumberSet Kind = "NS"
	// KindStringSet type used to represent sets of strings
	KindStringSet Kind = "SS"
	// KindBinarySet type used to represent sets of binaries
	KindBinarySet Kind = "BS"
)

var scalarKinds = map[Kind]bool{
	KindNumber: true,
	KindString: true,
	KindBinary: true,
}

// Scalar reports whether the kind is a key-eligible scalar (N, S, or B).
func (k Kind) Scalar() bool {
	return scalarKinds[k]
}

// Value abstraction of the parsed literal values
type Value interface {
	Kind() Kind
	Render() string
	ToAttributeValue() types.AttributeValue
}

// Null is the representation of the null value
type Null struct{}

// Kind returns the attribute kind
func (n *Null) Kind() Kind { return KindNull }

// Render returns the literal text of the value
func (n *Null) Render() string { return "null" }

// ToAttributeValue returns the dynamodb attribute value
func (n *Null) ToAttributeValue() types.AttributeValue {
	return &types.AttributeValueMemberNULL{Value: true}
}

// Bool is the representation of booleans
type Bool struct {
	Value bool
}

// Kind returns the attribute kind
func (b *Bool) Kind() Kind { return KindBool }

// Render returns the literal text of the value
func (b *Bool) Render() string {
	return fmt.Sprintf("%t", b.Value)
}

// ToAttributeValue returns the dynamodb attribute value
func (b *Bool) ToAttributeValue() types.AttributeValue {
	return &types.AttributeValueMemberBOOL{Value: b.Value}
}

// Number is the representation of numbers. The decimal text is kept
// as is so precision is preserved until the wire encoder sees it.
type Number struct {
	Value string
}

// Kind returns the attribute kind
func (n *Number) Kind() Kind { return KindNumber }

// Render returns the literal text of the value
func (n *Number) Render() string { return n.Value }

// ToAttributeValue returns the dynamodb attribute value
func (n *Number) ToAttributeValue() types.AttributeValue {
	return &types.AttributeValueMemberN{Value: n.Value}
}

// String is the representation of strings
type String struct {
	Value string
}

// Kind returns the attribute kind
func (s *String) Kind() Kind { return KindString }

// Render returns the literal text of the value
func (s *String) Render() string {
	return `"` + escapeString(s.Value) + `"`
}

// ToAttributeValue returns the dynamodb attribute value
func (s *String) ToAttributeValue() types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s.Value}
}

// Binary is the representation of binaries
type Binary struct {
	Value []byte
}

// Kind returns the attribute kind
func (b *Binary) Kind() Kind { return KindBinary }

// Render returns the literal text of the value
func (b *Binary) Render() string {
	return `b64"` + base64.StdEncoding.EncodeToString(b.Value) + `"`
}

// ToAttributeValue returns the dynamodb attribute value
func (b *Binary) ToAttributeValue() types.AttributeValue {
	return &types.AttributeValueMemberB{Value: b.Value}
}

// List is the representation of lists, heterogeneous elements allowed
type List struct {
	Elements []Value
}

// Kind returns the attribute kind
func (l *List) Kind() Kind { return KindList }

// Render returns the literal text of the value
func (l *List) Render() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.Render()
	}

	return "[" + strings.Join(parts, ",") + "]"
}

// ToAttributeValue returns the dynamodb attribute value
func (l *List) ToAttributeValue() types.AttributeValue {
	elems := make([]types.AttributeValue, len(l.Elements))
	for i, e := range l.Elements {
		elems[i] = e.ToAttributeValue()
	}

	return &types.AttributeValueMemberL{Value: elems}
}

// MapEntry is a single key/value pair of a map literal
type MapEntry struct {
	Key   string
	Value Value
}

// Map is the representation of maps. Entries keep insertion order so
// rendering is stable; keys are unique.
type Map struct {
	Entries []MapEntry
}

// Kind returns the attribute kind
func (m *Map) Kind() Kind { return KindMap }

// Render returns the literal text of the value
func (m *Map) Render() string {
	var out bytes.Buffer

	out.WriteString("{")

	for i, e := range m.Entries {
		if i > 0 {
			out.WriteString(",")
		}

		out.WriteString(`"` + escapeString(e.Key) + `":`)
		out.WriteString(e.Value.Render())
	}

	out.WriteString("}")

	return out.String()
}

// ToAttributeValue returns the dynamodb attribute value
func (m *Map) ToAttributeValue() types.AttributeValue {
	attrs := make(map[string]types.AttributeValue, len(m.Entries))
	for _, e := range m.Entries {
		attrs[e.Key] = e.Value.ToAttributeValue()
	}

	return &types.AttributeValueMemberM{Value: attrs}
}

// Get returns the entry value for a key
func (m *Map) Get(key string) (Value, bool) {
	for _, e := range m.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}

	return nil, false
}

// Set appends an entry, replacing the value of an existing key in place
func (m *Map) Set(key string, value Value) {
	for i, e := range m.Entries {
		if e.Key == key {
			m.Entries[i].Value = value

			return
		}
	}

	m.Entries = append(m.Entries, MapEntry{Key: key, Value: value})
}

// NumberSet is the representation of number sets, non-empty and unique
type NumberSet struct {
	Values []string
}

// Kind returns the attribute kind
func (ns *NumberSet) Kind() Kind { return KindNumberSet }

// Render returns the literal text of the value
func (ns *NumberSet) Render() string {
	return "<<" + strings.Join(ns.Values, ",") + ">>"
}

// ToAttributeValue returns the dynamodb attribute value
func (ns *NumberSet) ToAttributeValue() types.AttributeValue {
	return &types.AttributeValueMemberNS{Value: append([]string{}, ns.Values...)}
}

// StringSet is the representation of string sets, non-empty and unique
type StringSet struct {
	Values []string
}

// Kind returns the attribute kind
func (ss *StringSet) Kind() Kind { return KindStringSet }

// Render returns the literal text of the value
func (ss *StringSet) Render() string {
	parts := make([]string, len(ss.Values))
	for i, v := range ss.Values {
		parts[i] = `"` + escapeString(v) + `"`
	}

	return "<<" + strings.Join(parts, ",") + ">>"
}

// ToAttributeValue returns the dynamodb attribute value
func (ss *StringSet) ToAttributeValue() types.AttributeValue {
	return &types.AttributeValueMemberSS{Value: append([]string{}, ss.Values...)}
}

// BinarySet is the representation of binary sets, non-empty and unique
type BinarySet struct {
	Values [][]byte
}

// Kind returns the attribute kind
func (bs *BinarySet) Kind() Kind { return KindBinarySet }

// Render returns the literal text of the value
func (bs *BinarySet) Render() string {
	parts := make([]string, len(bs.Values))
	for i, v := range bs.Values {
		parts[i] = `b64"` + base64.StdEncoding.EncodeToString(v) + `"`
	}

	return "<<" + strings.Join(parts, ",") + ">>"
}

// ToAttributeValue returns the dynamodb attribute value
func (bs *BinarySet) ToAttributeValue() types.AttributeValue {
	vals := make([][]byte, len(bs.Values))
	for i, v := range bs.Values {
		vals[i] = append([]byte{}, v...)
	}

	return &types.AttributeValueMemberBS{Value: vals}
}

// escapeString converts text into the escaped form usable inside a
// double quoted literal: quote, backslash, the named control escapes,
// and \uXXXX (UTF-16 units) for the remaining control characters.
func escapeString(s string) string {
	var out strings.Builder

	for _, ch := range s {
		switch ch {
		case '"':
			out.WriteString(`\"`)
		case '\\':
			out.WriteString(`\\`)
		case '\b':
			out.WriteString(`\b`)
		case '\f':
			out.WriteString(`\f`)
		case '\n':
			out.WriteString(`\n`)
		case '\r':
			out.WriteString(`\r`)
		case '\t':
			out.WriteString(`\t`)
		default:
			if unicode.IsControl(ch) {
				for _, u := range utf16.Encode([]rune{ch}) {
					fmt.Fprintf(&out, `\u%04x`, u)
				}

				continue
			}

			out.WriteRune(ch)
		}
	}

	return out.String()
}
