package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynaqlabs/dynaq/schema"
)

func TestParseSortKeyCondition(t *testing.T) {
	tests := []struct {
		input string
		op    SortKeyOp
		value Value
		upper Value
	}{
		{`= "a"`, OpEq, &String{Value: "a"}, nil},
		{`== "a"`, OpEq, &String{Value: "a"}, nil},
		{`"a"`, OpEq, &String{Value: "a"}, nil},
		{`42`, OpEq, &Number{Value: "42"}, nil},
		{`< 5`, OpLt, &Number{Value: "5"}, nil},
		{`<= 5`, OpLe, &Number{Value: "5"}, nil},
		{`> 5`, OpGt, &Number{Value: "5"}, nil},
		{`>= 5`, OpGe, &Number{Value: "5"}, nil},
		{`BETWEEN 1 AND 5`, OpBetween, &Number{Value: "1"}, &Number{Value: "5"}},
		{`between "a" "b"`, OpBetween, &String{Value: "a"}, &String{Value: "b"}},
		{`BETWEEN 1 -5`, OpBetween, &Number{Value: "1"}, &Number{Value: "-5"}},
		{`BEGINS_WITH "0"`, OpBeginsWith, &String{Value: "0"}, nil},
		{`begins_with b"ab"`, OpBeginsWith, &Binary{Value: []byte("ab")}, nil},
	}

	for _, tt := range tests {
		cond, err := ParseSortKeyCondition(tt.input)
		require.NoError(t, err, "input: %s", tt.input)

		assert.Equal(t, tt.op, cond.Op, "input: %s", tt.input)
		assert.Equal(t, tt.value, cond.Value, "input: %s", tt.input)
		assert.Equal(t, tt.upper, cond.Upper, "input: %s", tt.input)
	}
}

func TestParseSortKeyConditionErrors(t *testing.T) {
	inputs := []string{
		``,
		`=`,
		`BETWEEN 1`,
		`BETWEEN 1 AND`,
		`BEGINS_WITH 42`,
		`begins_with <<1>>`,
		`= 1 extra`,
	}

	for _, input := range inputs {
		_, err := ParseSortKeyCondition(input)
		assert.Error(t, err, "input: %s", input)
	}
}

func TestResolveMatchingType(t *testing.T) {
	key := schema.Key{Name: "sk", Type: schema.KeyTypeNumber}

	cond, err := ParseSortKeyCondition(`<= 1`)
	require.NoError(t, err)

	for _, strict := range []bool{true, false} {
		resolved, err := cond.Resolve(key, strict)
		require.NoError(t, err)
		assert.Equal(t, &Number{Value: "1"}, resolved.Value)
	}
}

func TestResolveStrictMismatch(t *testing.T) {
	key := schema.Key{Name: "sk", Type: schema.KeyTypeString}

	cond, err := ParseSortKeyCondition(`<= 1`)
	require.NoError(t, err)

	_, err = cond.Resolve(key, true)
	require.Error(t, err)

	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, TypeSortKeyTypeMismatch, typeErr.Kind)
	assert.Equal(t, "S", typeErr.Expected)
	assert.Equal(t, "N", typeErr.Actual)
	assert.Equal(t, `"1"`, typeErr.Suggest)
	assert.Contains(t, typeErr.Error(), `Did you intend '"1"'?`)
}

func TestResolveNonStrictCoercion(t *testing.T) {
	tests := []struct {
		name     string
		keyType  schema.KeyType
		input    string
		expected Value
	}{
		{"number to string", schema.KeyTypeString, `<= 1`, &String{Value: "1"}},
		{"string to number", schema.KeyTypeNumber, `<= "1"`, &Number{Value: "1"}},
		{"hex string to binary", schema.KeyTypeBinary, `= "deadbeef"`, &Binary{Value: []byte{0xde, 0xad, 0xbe, 0xef}}},
		{"prefixed hex string to binary", schema.KeyTypeBinary, `= "0x01ff"`, &Binary{Value: []byte{0x01, 0xff}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := ParseSortKeyCondition(tt.input)
			require.NoError(t, err)

			resolved, err := cond.Resolve(schema.Key{Name: "sk", Type: tt.keyType}, false)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resolved.Value)
		})
	}
}

func TestResolveAmbiguousCoercion(t *testing.T) {
	tests := []struct {
		name    string
		keyType schema.KeyType
		input   string
	}{
		{"word to number", schema.KeyTypeNumber, `= "abc"`},
		{"word to binary", schema.KeyTypeBinary, `= "not hex!"`},
		{"bool to string", schema.KeyTypeString, `= true`},
		{"binary to number", schema.KeyTypeNumber, `= b"x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := ParseSortKeyCondition(tt.input)
			require.NoError(t, err)

			_, err = cond.Resolve(schema.Key{Name: "sk", Type: tt.keyType}, false)
			require.Error(t, err)

			var typeErr *TypeError
			require.ErrorAs(t, err, &typeErr)
			assert.Equal(t, TypeAmbiguousCoercion, typeErr.Kind)
		})
	}
}

func TestResolveBetweenBounds(t *testing.T) {
	key := schema.Key{Name: "sk", Type: schema.KeyTypeString}

	cond, err := ParseSortKeyCondition(`BETWEEN 1 AND 5`)
	require.NoError(t, err)

	resolved, err := cond.Resolve(key, false)
	require.NoError(t, err)
	assert.Equal(t, &String{Value: "1"}, resolved.Value)
	assert.Equal(t, &String{Value: "5"}, resolved.Upper)

	_, err = cond.Resolve(key, true)
	require.Error(t, err)
}
