package sendsigningnotification

import "agreement-workers/internal/common/validation"

const inputSchemaName = "send-signing-notification-input"

const inputSchema = `{
	"type": "object",
	"required": ["agreementId", "event"],
	"properties": {
		"agreementId": {"type": "string", "minLength": 1},
		"agreementNumber": {"type": "string"},
		"recipientEmail": {"type": "string"},
		"recipientPhone": {"type": "string"},
		"event": {
			"type": "string",
			"enum": [
				"fees_required",
				"awaiting_agency_signature",
				"awaiting_client_signature",
				"booked",
				"submission_rejected",
				"document_prepared"
			]
		},
		"message": {"type": "string"},
		"metadata": {"type": "object"}
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
