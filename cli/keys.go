package cli

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/dynaqlabs/dynaq/expression"
	"github.com/dynaqlabs/dynaq/schema"
)

// keyLiteral converts key text from the command line into the literal
// matching the key type. Binary keys take base64 text.
func keyLiteral(key schema.Key, value string) (expression.Value, error) {
	switch key.Type {
	case schema.KeyTypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return nil, fmt.Errorf("key %s is a number, got %q", key.Name, value)
		}

		return &expression.Number{Value: value}, nil
	case schema.KeyTypeBinary:
		decoded, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("key %s is binary, expected base64: %w", key.Name, err)
		}

		return &expression.Binary{Value: decoded}, nil
	}

	return &expression.String{Value: value}, nil
}
