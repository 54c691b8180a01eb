// Package contract validates export documents against the JSON Schema the
// external renderer parses. The schema is the source of truth for the
// hand-off shape; validation runs before anything is written to disk.
package contract

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed export.schema.json
var exportSchema []byte

var compiled = mustCompile()

func mustCompile() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("export.schema.json", bytes.NewReader(exportSchema)); err != nil {
		panic(fmt.Sprintf("contract: add schema resource: %v", err))
	}
	schema, err := c.Compile("export.schema.json")
	if err != nil {
		panic(fmt.Sprintf("contract: compile schema: %v", err))
	}
	return schema
}

// Validate checks a document (any JSON-marshalable value) against the
// renderer contract.
func Validate(doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("contract: marshal document: %w", err)
	}
	return ValidateJSON(data)
}

// ValidateJSON checks raw JSON bytes against the renderer contract.
func ValidateJSON(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("contract: parse document: %w", err)
	}
	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("contract: document does not match renderer contract: %w", err)
	}
	return nil
}
