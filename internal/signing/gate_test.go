// internal/signing/gate_test.go
package signing

import (
	"testing"

	"agreement-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func boolPtr(v bool) *bool {
	return &v
}

func TestEvaluateAgency(t *testing.T) {
	t.Run("blocked while fees outstanding", func(t *testing.T) {
		agreement := &models.Agreement{
			Status:        models.StatusPendingApplicantFees,
			AgreementData: &models.AgreementData{Fees: &models.FeeBlock{RequiresInput: true}},
		}
		d := Evaluate(agreement, RoleAgency)
		assert.False(t, d.CanSign)
		assert.Equal(t, StateFeesOutstanding, d.State)
		assert.True(t, d.State.Transient())
	})

	t.Run("ready once fees persisted", func(t *testing.T) {
		agreement := &models.Agreement{
			Status:        models.StatusPendingApplicantSignature,
			AgreementData: &models.AgreementData{Fees: &models.FeeBlock{RequiresInput: true, AgencyFees: feeAmount(5000)}},
		}
		d := Evaluate(agreement, RoleAgency)
		assert.True(t, d.CanSign)
		assert.Equal(t, StateReady, d.State)
	})

	t.Run("already signed is terminal", func(t *testing.T) {
		agreement := &models.Agreement{
			Status:       models.StatusPendingClientSignature,
			AgencySigned: true,
		}
		d := Evaluate(agreement, RoleAgency)
		assert.False(t, d.CanSign)
		assert.Equal(t, StateAlreadySigned, d.State)
		assert.False(t, d.State.Transient())
	})
}

func TestEvaluateClient(t *testing.T) {
	t.Run("blocked until applicant signs", func(t *testing.T) {
		for _, status := range []string{
			models.StatusDraft,
			models.StatusPendingApplicantFees,
			models.StatusPendingApplicantSignature,
			models.StatusPendingAgency,
		} {
			agreement := &models.Agreement{Status: status}
			d := Evaluate(agreement, RoleClient)
			assert.False(t, d.CanSign, status)
			assert.Equal(t, StateNotYourTurn, d.State, status)
			assert.True(t, d.State.Transient(), status)
		}
	})

	t.Run("ready once applicant has signed", func(t *testing.T) {
		agreement := &models.Agreement{
			Status:       models.StatusPendingClientSignature,
			AgencySigned: true,
		}
		d := Evaluate(agreement, RoleClient)
		assert.True(t, d.CanSign)
		assert.Equal(t, StateReady, d.State)
	})

	t.Run("complete once both signed", func(t *testing.T) {
		agreement := &models.Agreement{
			Status:       models.StatusFullySigned,
			AgencySigned: true,
			ClientSigned: true,
		}
		d := Evaluate(agreement, RoleClient)
		assert.False(t, d.CanSign)
		assert.Equal(t, StateComplete, d.State)
	})
}

func TestEvaluateServerHintIsAuthoritative(t *testing.T) {
	t.Run("server denial overrides local derivation", func(t *testing.T) {
		// Locally this looks signable, but the server says no.
		agreement := &models.Agreement{
			Status:        models.StatusPendingClientSignature,
			AgencySigned:  true,
			CanSign:       boolPtr(false),
			StatusMessage: "Agreement is under compliance review",
		}
		d := Evaluate(agreement, RoleClient)
		assert.False(t, d.CanSign)
		assert.Equal(t, "Agreement is under compliance review", d.Message)
	})

	t.Run("server approval overrides local derivation", func(t *testing.T) {
		agreement := &models.Agreement{
			Status:  models.StatusPendingApplicantSignature,
			CanSign: boolPtr(true),
		}
		assert.True(t, CanSign(agreement, RoleAgency))
	})
}

// No combination of inputs allows the agency to sign with fees unresolved,
// and the client can never sign before the agency, on legacy payloads.
func TestGateInvariants(t *testing.T) {
	statuses := []string{
		models.StatusDraft,
		models.StatusPendingApplicantFees,
		models.StatusPendingFees,
		models.StatusPendingApplicantSignature,
		models.StatusPendingAgency,
		models.StatusPendingClientSignature,
	}

	for _, status := range statuses {
		feeBlocked := &models.Agreement{
			Status:        status,
			AgreementData: &models.AgreementData{Fees: &models.FeeBlock{RequiresInput: true}},
		}
		if NeedsFees(feeBlocked) {
			assert.False(t, CanSign(feeBlocked, RoleAgency), "status %s", status)
		}

		unsignedByAgency := &models.Agreement{Status: status, AgencySigned: false}
		assert.False(t, CanSign(unsignedByAgency, RoleClient), "status %s", status)
	}
}

func TestBlockingReason(t *testing.T) {
	agreement := &models.Agreement{Status: models.StatusPendingApplicantSignature}
	assert.NotEmpty(t, BlockingReason(agreement, RoleClient))
	assert.Empty(t, BlockingReason(agreement, RoleAgency))
}

// Same snapshot viewed from both sides after the applicant has signed:
// publisher may sign, applicant sees a terminal already-signed block.
func TestMidSignatureProjection(t *testing.T) {
	agreement := &models.Agreement{
		Status:       models.StatusPendingClientSignature,
		AgencySigned: true,
		ClientSigned: false,
	}

	clientDecision := Evaluate(agreement, RoleClient)
	assert.True(t, clientDecision.CanSign)
	assert.Equal(t, StepAwait, CurrentStep(agreement, RoleClient))

	agencyDecision := Evaluate(agreement, RoleAgency)
	assert.False(t, agencyDecision.CanSign)
	assert.Equal(t, StateAlreadySigned, agencyDecision.State)
	assert.Equal(t, StepAwait, CurrentStep(agreement, RoleAgency))
}
