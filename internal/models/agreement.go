// internal/models/agreement.go
package models

import "time"

// Agreement lifecycle statuses as reported by the marketplace core API.
// Older deployments emit the short aliases, newer ones the explicit names;
// both spellings stay accepted on the wire.
const (
	StatusDraft                     = "draft"
	StatusPendingApplicantFees      = "pending_applicant_fees"
	StatusPendingFees               = "pending_fees" // legacy alias
	StatusPendingApplicantSignature = "pending_applicant_signature"
	StatusPendingAgency             = "pending_agency" // legacy alias
	StatusPendingClientSignature    = "pending_client_signature"
	StatusFullySigned               = "fully_signed"
	StatusBooked                    = "booked"
)

// Fee types accepted on fee submission.
const (
	FeeTypeFixed      = "fixed"
	FeeTypePercentage = "percentage"
)

// FeeBlock describes the placement-fee state for fee-bearing applicants.
// Absent entirely for direct professional applicants.
type FeeBlock struct {
	RequiresInput  bool     `json:"requiresInput"`
	AgencyFees     *float64 `json:"agencyFees"`
	FeeType        string   `json:"feeType,omitempty"`
	FeeDescription string   `json:"feeDescription,omitempty"`
}

// AgreementData is the nested payload block carried on the agreement.
type AgreementData struct {
	Fees *FeeBlock `json:"fees,omitempty"`
}

// Agreement is the server-owned snapshot. Workers never patch it locally;
// every mutation is followed by a full re-fetch.
type Agreement struct {
	ID                string `json:"id"`
	AgreementNumber   string `json:"agreement_number"`
	ContractID        string `json:"contract_id,omitempty"`
	Status            string `json:"status"`
	AgencySigned      bool   `json:"agency_signed"`
	ClientSigned      bool   `json:"client_signed"`
	IsCustomAgreement bool   `json:"is_custom_agreement"`

	AgreementData *AgreementData `json:"agreement_data,omitempty"`

	// Counterparty references. The publisher (institute) is the client side,
	// the applicant (agency, headhunter, or individual professional) the
	// agency side.
	ClientUserID string `json:"client_user_id"`
	AgencyUserID string `json:"agency_user_id"`

	// True when the applicant side is an individual professional rather
	// than a fee-bearing agency or headhunter.
	ApplicantIsProfessional bool `json:"applicant_is_professional"`

	// Server-computed signing hints. When present they are authoritative;
	// workers re-derive them only for legacy payloads that omit them.
	CanSign       *bool  `json:"can_sign,omitempty"`
	StatusMessage string `json:"status_message,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Fees returns the fee block, or nil when none exists on the payload.
func (a *Agreement) Fees() *FeeBlock {
	if a.AgreementData == nil {
		return nil
	}
	return a.AgreementData.Fees
}

// IsTerminal reports whether both parties have signed.
func (a *Agreement) IsTerminal() bool {
	return a.AgencySigned && a.ClientSigned
}

// FeeSubmission is the payload for updating agency fees on an agreement.
type FeeSubmission struct {
	Amount      float64 `json:"agencyFees"`
	FeeType     string  `json:"feeType"`
	Description string  `json:"feeDescription,omitempty"`
}

// SignatureSubmission is the payload for signing an agreement.
type SignatureSubmission struct {
	SignatureImage string `json:"signature"` // data URL of the captured signature
	SignedName     string `json:"signed_name"`
	TermsAccepted  bool   `json:"terms_accepted"`
}

// SignResult is the server response to a signature submission. BothSigned
// true means the contract was implicitly moved to booked server-side.
type SignResult struct {
	BothSigned bool `json:"both_signed"`
}

// SigningContext carries the explicit caller identity threaded into every
// signing evaluation instead of ambient session state.
type SigningContext struct {
	UserID              string `json:"userId"`
	Role                string `json:"role,omitempty"`
	InstituteCategoryID string `json:"instituteCategoryId,omitempty"`
}
