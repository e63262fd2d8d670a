package validation

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/flowgen-io/flowgen/pkg/models"
)

// documentSchema is the structural contract of the serialized workflow
// document. It runs before the semantic checks so malformed shapes are
// reported with the schema's own wording.
const documentSchema = `{
	"type": "object",
	"required": ["name", "nodes", "connections"],
	"properties": {
		"name": {"type": "string"},
		"nodes": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "string"},
					"name": {"type": "string"},
					"type": {"type": "string"},
					"parameters": {"type": "object"},
					"position": {
						"type": "array",
						"items": {"type": "number"}
					},
					"credentials": {"type": "object"}
				}
			}
		},
		"connections": {"type": "object"},
		"active": {"type": "boolean"},
		"settings": {"type": "object"}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// structuralErrors validates the serialized document against the JSON schema
// and returns one message per violation.
func structuralErrors(doc *models.WorkflowDocument) ([]string, error) {
	serialized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(serialized))
	if err != nil {
		return nil, fmt.Errorf("failed to run schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, fmt.Sprintf("schema: %s: %s", desc.Field(), desc.Description()))
	}

	return errs, nil
}
