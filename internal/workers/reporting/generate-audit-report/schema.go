// internal/workers/reporting/generate-audit-report/schema.go
package generateauditreport

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// reportSchema is the contract the sales tooling downstream reads; a
// report that fails it is a bug here, not bad input.
const reportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "businessId", "businessName", "findings", "generatedAt"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "businessId": {"type": "string", "minLength": 1},
    "businessName": {"type": "string", "minLength": 1},
    "campaignId": {"type": "string"},
    "score": {"type": ["number", "null"], "minimum": 0},
    "band": {"type": "string", "enum": ["hot", "warm", "cold", ""]},
    "angle": {"type": "string"},
    "findings": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["factor", "severity", "summary"],
        "properties": {
          "factor": {"type": "string", "minLength": 1},
          "severity": {"type": "string", "enum": ["high", "medium", "low", "info"]},
          "summary": {"type": "string", "minLength": 1}
        }
      }
    },
    "generatedAt": {"type": "string"}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(reportSchema)

func validateReport(report interface{}) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(report))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("report does not match schema: %s", strings.Join(details, "; "))
}
