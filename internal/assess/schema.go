package assess

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed assessment.schema.json
var schemaJSON string

// FieldError is one schema violation at a JSON path
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
})

// validatePayload checks a model response against the assessment schema.
// An error means the document could not be checked at all (not JSON, bad schema).
func validatePayload(doc string) ([]FieldError, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("load assessment schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate payload: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		errs = append(errs, FieldError{Field: field, Message: desc.Description()})
	}
	return errs, nil
}

// SchemaText returns the JSON schema embedded in prompts
func SchemaText() string {
	return schemaJSON
}
