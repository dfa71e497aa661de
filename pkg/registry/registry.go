// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const registrySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "activities"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "lastUpdated": {"type": "string"},
    "activities": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "displayName", "taskType", "category"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "displayName": {"type": "string", "minLength": 1},
          "taskType": {"type": "string", "minLength": 1},
          "category": {
            "type": "string",
            "enum": ["discovery", "enrichment", "scoring", "reporting", "outreach", "campaign", "crm"]
          },
          "implementationStatus": {
            "type": "string",
            "enum": ["planned", "in-progress", "completed", "verified", ""]
          },
          "retries": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

var registrySchemaLoader = gojsonschema.NewStringLoader(registrySchema)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Validate checks the registry against its schema and rejects duplicate
// activity ids.
func (r *ActivityRegistry) Validate() error {
	result, err := gojsonschema.Validate(registrySchemaLoader, gojsonschema.NewGoLoader(r))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("registry does not match schema: %s", strings.Join(details, "; "))
	}

	ids := make(map[string]bool)
	for _, activity := range r.Activities {
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true
	}
	return nil
}

// Find returns the activity with the given task type, or nil.
func (r *ActivityRegistry) Find(taskType string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i]
		}
	}
	return nil
}
