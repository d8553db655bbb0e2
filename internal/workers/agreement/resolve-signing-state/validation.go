package resolvesigningstate

import "agreement-workers/internal/common/validation"

const inputSchemaName = "resolve-signing-state-input"

const inputSchema = `{
	"type": "object",
	"required": ["agreementId", "userId"],
	"properties": {
		"agreementId": {"type": "string", "minLength": 1},
		"userId": {"type": "string", "minLength": 1},
		"forceRefresh": {"type": "boolean"}
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
