package matching

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaResource is the name the compiled schema is registered under.
const schemaResource = "body-schema.json"

// SchemaRule matches JSON bodies valid against a JSON Schema.
type SchemaRule struct {
	schema *jsonschema.Schema
}

// CompileSchema compiles a JSON Schema (draft 2020-12) given as decoded
// JSON or YAML data. A nil schema gives a zero rule.
func CompileSchema(schema any) (SchemaRule, error) {
	if schema == nil {
		return SchemaRule{}, nil
	}

	// Round trip through JSON so YAML-decoded values compile the same.
	data, err := json.Marshal(schema)
	if err != nil {
		return SchemaRule{}, fmt.Errorf("encoding body schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaResource, bytes.NewReader(data)); err != nil {
		return SchemaRule{}, fmt.Errorf("invalid body schema: %w", err)
	}
	compiled, err := compiler.Compile(schemaResource)
	if err != nil {
		return SchemaRule{}, fmt.Errorf("invalid body schema: %w", err)
	}
	return SchemaRule{schema: compiled}, nil
}

// IsZero reports whether the rule has no schema.
func (r SchemaRule) IsZero() bool {
	return r.schema == nil
}

// Match reports whether body is JSON valid against the schema. A zero
// rule matches everything; a body that is not JSON never matches.
func (r SchemaRule) Match(body []byte) bool {
	if r.schema == nil {
		return true
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return false
	}
	return r.schema.Validate(v) == nil
}
