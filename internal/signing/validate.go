// internal/signing/validate.go
package signing

import (
	"agreement-workers/internal/common/errors"
	"agreement-workers/internal/models"
)

// ValidateFeeSubmission checks a fee payload before any network call is
// made. A rejected submission never reaches the marketplace API.
func ValidateFeeSubmission(sub *models.FeeSubmission) error {
	if sub == nil {
		return errors.NewFeeValidationError("fee submission is required")
	}
	if sub.Amount <= 0 {
		return errors.NewFeeValidationError("fee amount must be greater than zero")
	}
	switch sub.FeeType {
	case models.FeeTypeFixed, models.FeeTypePercentage:
	default:
		return errors.NewFeeValidationError("fee type must be fixed or percentage")
	}
	return nil
}

// ValidateSignatureSubmission checks a signature payload before any network
// call is made: a signed name, explicit terms acceptance, and a captured
// signature image are all mandatory.
func ValidateSignatureSubmission(sub *models.SignatureSubmission) error {
	if sub == nil {
		return errors.NewSignatureValidationError("signature submission is required")
	}
	if sub.SignedName == "" {
		return errors.NewSignatureValidationError("signed name is required")
	}
	if !sub.TermsAccepted {
		return errors.NewSignatureValidationError("terms must be accepted before signing")
	}
	if sub.SignatureImage == "" {
		return errors.NewSignatureValidationError("a captured signature is required")
	}
	return nil
}

// GuardSignature enforces the signing gate ahead of submission. For an
// agency signer with outstanding fees the signature must never be sent;
// out-of-turn and duplicate attempts are rejected with the matching error.
func GuardSignature(agreement *models.Agreement, role Role) error {
	decision := Evaluate(agreement, role)
	if decision.CanSign {
		return nil
	}

	switch decision.State {
	case StateFeesOutstanding:
		return errors.NewFeesOutstandingError(agreement.ID)
	case StateAlreadySigned, StateComplete:
		return errors.NewAlreadySignedError(string(role))
	default:
		return errors.NewSigningOutOfTurnError(string(role))
	}
}
