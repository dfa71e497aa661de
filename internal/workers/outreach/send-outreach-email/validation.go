// internal/workers/outreach/send-outreach-email/validation.go
package sendoutreachemail

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const inputSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["campaignId", "businessId", "to", "emailTemplate"],
  "properties": {
    "campaignId": {"type": "string", "minLength": 1},
    "businessId": {"type": "string", "minLength": 1},
    "to": {"type": "string", "minLength": 5, "maxLength": 255},
    "emailTemplate": {
      "type": "object",
      "required": ["id", "subject", "body"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "subject": {"type": "string", "minLength": 1, "maxLength": 500},
        "body": {"type": "string", "minLength": 1, "maxLength": 100000},
        "isHtml": {"type": "boolean"}
      }
    },
    "templateVars": {"type": "object"}
  }
}`

var inputSchemaLoader = gojsonschema.NewStringLoader(inputSchema)

func validateInput(input *Input) error {
	result, err := gojsonschema.Validate(inputSchemaLoader, gojsonschema.NewGoLoader(input))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("invalid input: %s", strings.Join(details, "; "))
	}

	if !isValidEmail(input.To) {
		return fmt.Errorf("invalid 'to' email address: %s", input.To)
	}
	return nil
}

func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	if len(parts[0]) == 0 || len(parts[1]) == 0 {
		return false
	}
	return strings.Contains(parts[1], ".")
}
