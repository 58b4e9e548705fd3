package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed pkg.schema.json
var manifestSchema []byte

// GetManifestSchema returns the embedded manifest JSON schema, parsed.
func GetManifestSchema() (interface{}, error) {
	var jsonSchema interface{}
	if err := json.Unmarshal(manifestSchema, &jsonSchema); err != nil {
		return nil, fmt.Errorf("failed to parse JSON schema: %w", err)
	}
	return jsonSchema, nil
}

// GetManifestSchemaRaw returns the raw manifest JSON schema bytes.
func GetManifestSchemaRaw() []byte {
	return manifestSchema
}
