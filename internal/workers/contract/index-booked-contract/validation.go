package indexbookedcontract

import "agreement-workers/internal/common/validation"

const inputSchemaName = "index-booked-contract-input"

const inputSchema = `{
	"type": "object",
	"required": ["agreementId"],
	"properties": {
		"agreementId": {"type": "string", "minLength": 1}
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
