// Package schema describes table key schemas and secondary indexes as
// returned by DescribeTable.
package schema

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// KeyType is the attribute type of a key: S, N, or B.
type KeyType string

// Key attribute types.
const (
	KeyTypeString KeyType = "S"
	KeyTypeNumber KeyType = "N"
	KeyTypeBinary KeyType = "B"
)

// ParseKeyType converts an attribute type name into a KeyType.
func ParseKeyType(s string) (KeyType, error) {
	switch strings.ToUpper(s) {
	case "S":
		return KeyTypeString, nil
	case "N":
		return KeyTypeNumber, nil
	case "B":
		return KeyTypeBinary, nil
	}

	return "", fmt.Errorf("invalid key type %q, must be S, N, or B", s)
}

// Key is a single key attribute definition.
type Key struct {
	Name string
	Type KeyType
}

// Display renders the key in "name (TYPE)" form for table listings.
func (k Key) Display() string {
	return fmt.Sprintf("%s (%s)", k.Name, k.Type)
}

// Index is the key schema of a secondary index.
type Index struct {
	Name string
	Pk   Key
	Sk   *Key
}

// Table is the key schema of a table with its secondary indexes.
type Table struct {
	Name    string
	Region  string
	Pk      Key
	Sk      *Key
	Indexes map[string]Index
	Mode    string
}

// KeysForIndex returns the key pair of the named index, or the table's
// own keys when indexName is empty.
func (t *Table) KeysForIndex(indexName string) (Key, *Key, error) {
	if indexName == "" {
		return t.Pk, t.Sk, nil
	}

	idx, ok := t.Indexes[indexName]
	if !ok {
		return Key{}, nil, fmt.Errorf("index %q not found on table %q", indexName, t.Name)
	}

	return idx.Pk, idx.Sk, nil
}

// FromTableDescription builds a Table from a DescribeTable result.
func FromTableDescription(region string, desc *types.TableDescription) (*Table, error) {
	if desc == nil {
		return nil, fmt.Errorf("empty table description")
	}

	attrTypes := map[string]KeyType{}

	for _, def := range desc.AttributeDefinitions {
		kt, err := ParseKeyType(string(def.AttributeType))
		if err != nil {
			return nil, err
		}

		attrTypes[stringValue(def.AttributeName)] = kt
	}

	pk, sk, err := keysFromSchema(desc.KeySchema, attrTypes)
	if err != nil {
		return nil, err
	}

	table := &Table{
		Name:    stringValue(desc.TableName),
		Region:  region,
		Pk:      pk,
		Sk:      sk,
		Indexes: map[string]Index{},
		Mode:    billingMode(desc),
	}

	for _, gsi := range desc.GlobalSecondaryIndexes {
		pk, sk, err := keysFromSchema(gsi.KeySchema, attrTypes)
		if err != nil {
			return nil, err
		}

		name := stringValue(gsi.IndexName)
		table.Indexes[name] = Index{Name: name, Pk: pk, Sk: sk}
	}

	for _, lsi := range desc.LocalSecondaryIndexes {
		pk, sk, err := keysFromSchema(lsi.KeySchema, attrTypes)
		if err != nil {
			return nil, err
		}

		name := stringValue(lsi.IndexName)
		table.Indexes[name] = Index{Name: name, Pk: pk, Sk: sk}
	}

	return table, nil
}

func keysFromSchema(elems []types.KeySchemaElement, attrTypes map[string]KeyType) (Key, *Key, error) {
	var pk Key

	var sk *Key

	for _, elem := range elems {
		name := stringValue(elem.AttributeName)

		kt, ok := attrTypes[name]
		if !ok {
			return Key{}, nil, fmt.Errorf("key attribute %q has no attribute definition", name)
		}

		switch elem.KeyType {
		case types.KeyTypeHash:
			pk = Key{Name: name, Type: kt}
		case types.KeyTypeRange:
			sk = &Key{Name: name, Type: kt}
		}
	}

	if pk.Name == "" {
		return Key{}, nil, fmt.Errorf("key schema has no partition key")
	}

	return pk, sk, nil
}

func billingMode(desc *types.TableDescription) string {
	if desc.BillingModeSummary != nil && desc.BillingModeSummary.BillingMode == types.BillingModePayPerRequest {
		return "OnDemand"
	}

	return "Provisioned"
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
