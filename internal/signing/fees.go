// internal/signing/fees.go
package signing

import "agreement-workers/internal/models"

// NeedsFees reports whether the applicant side must still supply a placement
// fee before it may sign. Pure function of the snapshot: safe to call on
// every poll, always returns the same answer for the same input.
//
// Fees are only ever owed by fee-bearing intermediaries (agencies and
// headhunters). Individual professionals are exempt regardless of what the
// backend flags claim. Once a fee amount is persisted the requirement is
// satisfied, even if a stale requiresInput flag is still set, and once the
// applicant has signed the question is moot.
func NeedsFees(agreement *models.Agreement) bool {
	if agreement.ApplicantIsProfessional {
		return false
	}
	if agreement.AgencySigned {
		return false
	}

	fees := agreement.Fees()
	if fees != nil && fees.AgencyFees != nil && *fees.AgencyFees != 0 {
		return false
	}

	if fees != nil && fees.RequiresInput {
		return true
	}
	switch agreement.Status {
	case models.StatusPendingApplicantFees, models.StatusPendingFees:
		return true
	}
	return false
}

// LastKnownFee returns the persisted fee amount for display prefill, or nil
// when no fee has been recorded yet.
func LastKnownFee(agreement *models.Agreement) *float64 {
	fees := agreement.Fees()
	if fees == nil || fees.AgencyFees == nil || *fees.AgencyFees == 0 {
		return nil
	}
	return fees.AgencyFees
}
