package ddb

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dynaqlabs/dynaq/schema"
)

// ItemToJSON converts an item into plain JSON text. Sets become arrays
// and binaries become base64 strings.
func ItemToJSON(item map[string]types.AttributeValue) (string, error) {
	var plain map[string]interface{}
	if err := attributevalue.UnmarshalMap(item, &plain); err != nil {
		return "", fmt.Errorf("decoding item: %w", err)
	}

	data, err := json.Marshal(plain)
	if err != nil {
		return "", fmt.Errorf("encoding item: %w", err)
	}

	return string(data), nil
}

// ItemsToJSON converts a result set into a JSON array.
func ItemsToJSON(items []map[string]types.AttributeValue) (string, error) {
	plain := make([]map[string]interface{}, len(items))

	for i, item := range items {
		if err := attributevalue.UnmarshalMap(item, &plain[i]); err != nil {
			return "", fmt.Errorf("decoding item %d: %w", i, err)
		}
	}

	data, err := json.Marshal(plain)
	if err != nil {
		return "", fmt.Errorf("encoding items: %w", err)
	}

	return string(data), nil
}

// KeyAttribute converts a key value given as command line text into the
// attribute value matching the key type. Binary keys take base64 text.
func KeyAttribute(key schema.Key, value string) (types.AttributeValue, error) {
	switch key.Type {
	case schema.KeyTypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return nil, fmt.Errorf("key %s is a number, got %q", key.Name, value)
		}

		return &types.AttributeValueMemberN{Value: value}, nil
	case schema.KeyTypeBinary:
		decoded, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("key %s is binary, expected base64: %w", key.Name, err)
		}

		return &types.AttributeValueMemberB{Value: decoded}, nil
	}

	return &types.AttributeValueMemberS{Value: value}, nil
}

// KeyAttributes builds the key map of a table from command line text
// values. skValue may be empty only when the table has no sort key.
func KeyAttributes(pk schema.Key, sk *schema.Key, pkValue, skValue string) (map[string]types.AttributeValue, error) {
	key := map[string]types.AttributeValue{}

	av, err := KeyAttribute(pk, pkValue)
	if err != nil {
		return nil, err
	}

	key[pk.Name] = av

	if sk == nil {
		if skValue != "" {
			return nil, fmt.Errorf("table has no sort key, got extra key value %q", skValue)
		}

		return key, nil
	}

	if skValue == "" {
		return nil, fmt.Errorf("table requires a sort key value for %s", sk.Name)
	}

	av, err = KeyAttribute(*sk, skValue)
	if err != nil {
		return nil, err
	}

	key[sk.Name] = av

	return key, nil
}
