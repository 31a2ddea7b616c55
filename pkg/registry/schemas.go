package registry

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateConfigSchema checks a node config against a JSON schema fragment and
// returns one message per violation. The API layer uses this to validate node
// configs against their factory's declared schema before storing a workflow.
func ValidateConfigSchema(schema, config map[string]any) []string {
	if len(schema) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	configLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, configLoader)
	if err != nil {
		return []string{fmt.Sprintf("config schema validation failed: %v", err)}
	}

	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}

	return errs
}
