package prepareagreementdocument

import "agreement-workers/internal/common/validation"

const inputSchemaName = "prepare-agreement-document-input"

const inputSchema = `{
	"type": "object",
	"required": ["agreementId", "userId", "mode"],
	"properties": {
		"agreementId": {"type": "string", "minLength": 1},
		"userId": {"type": "string", "minLength": 1},
		"mode": {"type": "string", "enum": ["platform", "custom"]},
		"filename": {"type": "string"},
		"fileContent": {"type": "string"}
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
