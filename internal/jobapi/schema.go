package jobapi

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed graph-schema.json
var schemaFS embed.FS

var embeddedSchemaLoader = gojsonschema.NewBytesLoader(mustReadSchema())

func mustReadSchema() []byte {
	b, err := schemaFS.ReadFile("graph-schema.json")
	if err != nil {
		panic(fmt.Sprintf("jobapi: embedded schema missing: %v", err))
	}

	return b
}

// ValidationError reports every JSON Schema violation found in a payload,
// the way the teacher's uast validate command collects every gojsonschema
// ResultError before reporting, instead of stopping at the first one.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("jobapi: invalid graph payload: %s", strings.Join(e.Violations, "; "))
}

// ValidateGraphJSON checks raw JSON bytes against the bundled call-graph
// schema before they are unmarshalled into a WireGraph, so a malformed
// payload is rejected with field-level detail rather than a generic
// json.Unmarshal error.
func ValidateGraphJSON(raw []byte) error {
	var data any

	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("jobapi: invalid JSON: %w", err)
	}

	result, err := gojsonschema.Validate(embeddedSchemaLoader, gojsonschema.NewGoLoader(data))
	if err != nil {
		return fmt.Errorf("jobapi: schema validation error: %w", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return &ValidationError{Violations: violations}
}

// DecodeGraph validates raw against the bundled schema and, if valid,
// unmarshals it into a WireGraph.
func DecodeGraph(raw []byte) (*WireGraph, error) {
	if err := ValidateGraphJSON(raw); err != nil {
		return nil, err
	}

	var w WireGraph

	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("jobapi: decode graph: %w", err)
	}

	return &w, nil
}
