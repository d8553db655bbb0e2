package recordagreementaudit

import "agreement-workers/internal/common/validation"

const inputSchemaName = "record-agreement-audit-input"

const inputSchema = `{
	"type": "object",
	"required": ["agreementId", "userId", "role", "action"],
	"properties": {
		"agreementId": {"type": "string", "minLength": 1},
		"userId": {"type": "string", "minLength": 1},
		"role": {"type": "string", "enum": ["client", "agency", "system"]},
		"action": {"type": "string", "minLength": 1},
		"detail": {"type": "string"}
	}
}`

var inputValidator *validation.SchemaValidator

func init() {
	v, err := validation.NewSchemaValidator(map[string]string{inputSchemaName: inputSchema})
	if err != nil {
		panic(err)
	}
	inputValidator = v
}

func validateInput(variables map[string]interface{}) error {
	return inputValidator.Validate(inputSchemaName, variables)
}
