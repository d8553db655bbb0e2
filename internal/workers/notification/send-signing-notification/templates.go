package sendsigningnotification

import (
	"fmt"
	"regexp"
	"strings"
)

type template struct {
	Subject string
	Body    string
}

// Templates are keyed by signing event. Placeholders use {{name}} and are
// filled from the job input plus its metadata map.
var eventTemplates = map[string]template{
	EventFeesRequired: {
		Subject: "Action required for agreement {{agreementNumber}}",
		Body:    "Agency fees must be submitted before agreement {{agreementNumber}} can be signed.",
	},
	EventAwaitingAgency: {
		Subject: "Agreement {{agreementNumber}} is ready for your signature",
		Body:    "Agreement {{agreementNumber}} is waiting for the agency signature.",
	},
	EventAwaitingClient: {
		Subject: "Agreement {{agreementNumber}} is ready for your signature",
		Body:    "The agency has signed agreement {{agreementNumber}}. It is now waiting for your signature.",
	},
	EventAgreementBooked: {
		Subject: "Agreement {{agreementNumber}} is fully signed",
		Body:    "Both parties have signed agreement {{agreementNumber}}. The contract is now booked.",
	},
	EventSigningRejected: {
		Subject: "Submission rejected for agreement {{agreementNumber}}",
		Body:    "A submission on agreement {{agreementNumber}} was rejected: {{message}}",
	},
	EventDocumentPrepared: {
		Subject: "Agreement document ready for {{agreementNumber}}",
		Body:    "The agreement document for {{agreementNumber}} has been prepared and is ready for review.",
	},
}

var placeholderPattern = regexp.MustCompile(`\{\{[a-zA-Z0-9_]+\}\}`)

func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		var value string
		switch typed := v.(type) {
		case string:
			value = typed
		case nil:
			value = ""
		default:
			value = fmt.Sprintf("%v", typed)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}
	// Unknown placeholders render as empty rather than leaking braces.
	return placeholderPattern.ReplaceAllString(result, "")
}
