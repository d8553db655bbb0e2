// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaValidator validates worker input payloads against JSON Schema
// definitions. Schemas are compiled once and reused across jobs.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewSchemaValidator compiles the given schemas, keyed by name.
func NewSchemaValidator(schemaSources map[string]string) (*SchemaValidator, error) {
	compiled := make(map[string]*gojsonschema.Schema, len(schemaSources))
	for name, source := range schemaSources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %q: %w", name, err)
		}
		compiled[name] = schema
	}
	return &SchemaValidator{schemas: compiled}, nil
}

// Validate checks document against the named schema. Returns a single error
// aggregating all violations so the full list reaches the job variables.
func (v *SchemaValidator) Validate(schemaName string, document interface{}) error {
	schema, ok := v.schemas[schemaName]
	if !ok {
		return fmt.Errorf("unknown schema %q", schemaName)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return fmt.Errorf("invalid payload: %s", strings.Join(violations, "; "))
}

// ValidateJSON checks a raw JSON document against the named schema.
func (v *SchemaValidator) ValidateJSON(schemaName string, raw []byte) error {
	schema, ok := v.schemas[schemaName]
	if !ok {
		return fmt.Errorf("unknown schema %q", schemaName)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return fmt.Errorf("invalid payload: %s", strings.Join(violations, "; "))
}
