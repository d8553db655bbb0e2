// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}
	seen := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if a.ID == "" || a.TaskType == "" {
			return fmt.Errorf("activity %q is missing id or taskType", a.DisplayName)
		}
		if seen[a.TaskType] {
			return fmt.Errorf("duplicate taskType %q", a.TaskType)
		}
		seen[a.TaskType] = true
	}
	return nil
}

// Default returns the built-in registry of agreement signing activities,
// used when no registry file is configured.
func Default() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-08-01",
		Activities: []Activity{
			{
				ID:                   "resolve-signing-state",
				DisplayName:          "Resolve Signing State",
				Description:          "Projects an agreement onto a user: role, current step, fee status, and whether they may sign.",
				Category:             "agreement",
				Version:              "1.0.0",
				TaskType:             "agreement.signing.resolve",
				ImplementationStatus: "implemented",
				ErrorCodes:           []string{"AGREEMENT_FETCH_FAILED", "ROLE_UNRESOLVED"},
				Timeout:              "10s",
				Retries:              3,
				Workflows:            []string{"agreement-signing"},
				Tags:                 []string{"read-only", "cached"},
			},
			{
				ID:                   "submit-agency-fees",
				DisplayName:          "Submit Agency Fees",
				Description:          "Persists the agency fee declaration that gates the applicant signature.",
				Category:             "agreement",
				Version:              "1.0.0",
				TaskType:             "agreement.fees.submit",
				ImplementationStatus: "implemented",
				ErrorCodes:           []string{"FEE_VALIDATION_FAILED", "FEE_SUBMISSION_FAILED", "ROLE_UNRESOLVED"},
				Timeout:              "15s",
				Retries:              0,
				Workflows:            []string{"agreement-signing"},
				Tags:                 []string{"user-action"},
			},
			{
				ID:                   "sign-agreement",
				DisplayName:          "Sign Agreement",
				Description:          "Records one party's signature, enforcing fee and ordering gates before submission.",
				Category:             "agreement",
				Version:              "1.0.0",
				TaskType:             "agreement.signature.submit",
				ImplementationStatus: "implemented",
				ErrorCodes: []string{
					"SIGNATURE_VALIDATION_FAILED", "SIGNATURE_SUBMISSION_FAILED",
					"FEES_OUTSTANDING", "SIGNING_OUT_OF_TURN", "ALREADY_SIGNED",
				},
				Timeout:   "20s",
				Retries:   0,
				Workflows: []string{"agreement-signing"},
				Tags:      []string{"user-action"},
			},
			{
				ID:                   "prepare-agreement-document",
				DisplayName:          "Prepare Agreement Document",
				Description:          "Chooses the platform agreement document or uploads a custom one while the agreement is in draft.",
				Category:             "agreement",
				Version:              "1.0.0",
				TaskType:             "agreement.document.prepare",
				ImplementationStatus: "implemented",
				ErrorCodes:           []string{"DOCUMENT_VALIDATION_FAILED", "DOCUMENT_UPLOAD_FAILED"},
				Timeout:              "60s",
				Retries:              0,
				Workflows:            []string{"agreement-signing"},
				Tags:                 []string{"user-action", "upload"},
			},
			{
				ID:                   "record-agreement-audit",
				DisplayName:          "Record Agreement Audit",
				Description:          "Writes an audit row for a signing lifecycle action and mirrors it to the marketplace action log.",
				Category:             "agreement",
				Version:              "1.0.0",
				TaskType:             "agreement.audit.record",
				ImplementationStatus: "implemented",
				ErrorCodes:           []string{"AUDIT_WRITE_FAILED"},
				Timeout:              "10s",
				Retries:              3,
				Workflows:            []string{"agreement-signing"},
				Tags:                 []string{"background"},
			},
			{
				ID:                   "index-booked-contract",
				DisplayName:          "Index Booked Contract",
				Description:          "Indexes a fully signed agreement into the booked-contracts search index.",
				Category:             "contract",
				Version:              "1.0.0",
				TaskType:             "contract.booked.index",
				ImplementationStatus: "implemented",
				ErrorCodes:           []string{"CONTRACT_INDEX_FAILED", "AGREEMENT_FETCH_FAILED"},
				Timeout:              "15s",
				Retries:              3,
				Workflows:            []string{"agreement-signing"},
				Tags:                 []string{"background", "search"},
			},
			{
				ID:                   "send-signing-notification",
				DisplayName:          "Send Signing Notification",
				Description:          "Notifies the counterparty that it is their turn to act, or that signing completed.",
				Category:             "notification",
				Version:              "1.0.0",
				TaskType:             "notification.signing.send",
				ImplementationStatus: "implemented",
				ErrorCodes:           []string{"NOTIFICATION_SEND_FAILED", "RECIPIENT_UNAVAILABLE"},
				Timeout:              "15s",
				Retries:              3,
				Workflows:            []string{"agreement-signing"},
				Tags:                 []string{"background", "email", "sms"},
			},
		},
	}
}
