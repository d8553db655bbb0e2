package submitagencyfees

import "agreement-workers/internal/common/validation"

const inputSchemaName = "submit-agency-fees-input"

const inputSchema = `{
	"type": "object",
	"required": ["agreementId", "userId", "amount", "feeType"],
	"properties": {
		"agreementId": {"type": "string", "minLength": 1},
		"userId": {"type": "string", "minLength": 1},
		"amount": {"type": "number"},
		"feeType": {"type": "string", "enum": ["fixed", "percentage"]},
		"description": {"type": "string"}
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
