// internal/models/audit.go
package models

import "time"

// Audit action names recorded against agreements.
const (
	AuditActionFeesSubmitted      = "fees_submitted"
	AuditActionAgencySigned       = "agency_signed"
	AuditActionClientSigned       = "client_signed"
	AuditActionBooked             = "booked"
	AuditActionDocumentChosen     = "platform_document_chosen"
	AuditActionDocumentUploaded   = "custom_document_uploaded"
	AuditActionSubmissionRejected = "submission_rejected"
)

// AuditRecord is a single row in the agreement audit log.
type AuditRecord struct {
	ID          string    `json:"id,omitempty"`
	AgreementID string    `json:"agreement_id"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	Action      string    `json:"action"`
	Detail      string    `json:"detail,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookedContract is the document indexed into Elasticsearch once an
// agreement reaches the booked state.
type BookedContract struct {
	AgreementID     string    `json:"agreement_id"`
	AgreementNumber string    `json:"agreement_number"`
	ContractID      string    `json:"contract_id"`
	ClientUserID    string    `json:"client_user_id"`
	AgencyUserID    string    `json:"agency_user_id"`
	AgencyFees      *float64  `json:"agency_fees,omitempty"`
	FeeType         string    `json:"fee_type,omitempty"`
	IsCustomDoc     bool      `json:"is_custom_doc"`
	BookedAt        time.Time `json:"booked_at"`
}

// SigningNotificationRequest asks the notification worker to tell a
// counterparty that it is their turn to act (or that signing completed).
type SigningNotificationRequest struct {
	AgreementID     string `json:"agreement_id"`
	AgreementNumber string `json:"agreement_number"`
	RecipientEmail  string `json:"recipient_email,omitempty"`
	RecipientPhone  string `json:"recipient_phone,omitempty"`
	Event           string `json:"event"` // e.g. awaiting_client_signature, booked
	Message         string `json:"message,omitempty"`
}
