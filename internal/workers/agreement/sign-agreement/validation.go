package signagreement

import "agreement-workers/internal/common/validation"

const inputSchemaName = "sign-agreement-input"

const inputSchema = `{
	"type": "object",
	"required": ["agreementId", "userId", "signatureImage", "signedName", "termsAccepted"],
	"properties": {
		"agreementId": {"type": "string", "minLength": 1},
		"userId": {"type": "string", "minLength": 1},
		"signatureImage": {"type": "string", "minLength": 1},
		"signedName": {"type": "string", "minLength": 1},
		"termsAccepted": {"type": "boolean"}
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
