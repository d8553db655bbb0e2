// internal/signing/step.go
package signing

import "agreement-workers/internal/models"

// Steps in the four-stage signing progression. The meaning of each ordinal
// depends on the viewer's role; see CurrentStep.
const (
	StepPrepare = 1
	StepSign    = 2
	StepAwait   = 3
	StepDone    = 4
)

// CurrentStep derives the 1..4 progress ordinal for the given role from the
// current snapshot alone. No memory of prior steps: re-derivable after any
// reload.
//
// Publisher (client) view: 1 while drafting the document, 2 while waiting on
// the applicant's signature, 3 when it is the publisher's turn to review and
// sign, 4 once complete.
//
// Applicant (agency) view: 1 while a fee amount is still required, 2 when it
// is the applicant's turn to sign, 3 while waiting on the publisher, 4 once
// complete.
func CurrentStep(agreement *models.Agreement, role Role) int {
	switch role {
	case RoleClient:
		switch {
		case agreement.Status == models.StatusDraft:
			return StepPrepare
		case !agreement.AgencySigned:
			return StepSign
		case !agreement.ClientSigned:
			return StepAwait
		default:
			return StepDone
		}
	default: // RoleAgency
		switch {
		case NeedsFees(agreement):
			return StepPrepare
		case !agreement.AgencySigned:
			return StepSign
		case !agreement.ClientSigned:
			return StepAwait
		default:
			return StepDone
		}
	}
}

// CheckSignatureProgress verifies the snapshot is in one of the three legal
// signature-progress states. The applicant signs strictly first, so a
// client signature without an agency signature is never valid.
func CheckSignatureProgress(agreement *models.Agreement) bool {
	return !(agreement.ClientSigned && !agreement.AgencySigned)
}
