// internal/signing/step_test.go
package signing

import (
	"testing"

	"agreement-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCurrentStepClient(t *testing.T) {
	tests := []struct {
		name      string
		agreement *models.Agreement
		expected  int
	}{
		{
			name:      "draft agreement is document preparation",
			agreement: &models.Agreement{Status: models.StatusDraft},
			expected:  StepPrepare,
		},
		{
			name:      "waiting on applicant signature",
			agreement: &models.Agreement{Status: models.StatusPendingApplicantSignature},
			expected:  StepSign,
		},
		{
			name:      "applicant signed, publisher turn",
			agreement: &models.Agreement{Status: models.StatusPendingClientSignature, AgencySigned: true},
			expected:  StepAwait,
		},
		{
			name:      "both signed",
			agreement: &models.Agreement{Status: models.StatusFullySigned, AgencySigned: true, ClientSigned: true},
			expected:  StepDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CurrentStep(tt.agreement, RoleClient))
		})
	}
}

func TestCurrentStepAgency(t *testing.T) {
	tests := []struct {
		name      string
		agreement *models.Agreement
		expected  int
	}{
		{
			name: "fee input still required",
			agreement: &models.Agreement{
				Status:        models.StatusPendingApplicantFees,
				AgreementData: &models.AgreementData{Fees: &models.FeeBlock{RequiresInput: true}},
			},
			expected: StepPrepare,
		},
		{
			name: "fees satisfied, applicant must sign",
			agreement: &models.Agreement{
				Status:        models.StatusPendingApplicantSignature,
				AgreementData: &models.AgreementData{Fees: &models.FeeBlock{AgencyFees: feeAmount(5000)}},
			},
			expected: StepSign,
		},
		{
			name:      "fee-exempt professional goes straight to signing",
			agreement: &models.Agreement{Status: models.StatusPendingApplicantFees, ApplicantIsProfessional: true},
			expected:  StepSign,
		},
		{
			name:      "applicant signed, waiting on publisher",
			agreement: &models.Agreement{Status: models.StatusPendingClientSignature, AgencySigned: true},
			expected:  StepAwait,
		},
		{
			name:      "both signed",
			agreement: &models.Agreement{Status: models.StatusFullySigned, AgencySigned: true, ClientSigned: true},
			expected:  StepDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CurrentStep(tt.agreement, RoleAgency))
		})
	}
}

// Every legal signature-progress state must map to a step the role table
// permits, for both roles.
func TestCurrentStepCoversAllLegalStates(t *testing.T) {
	states := []struct {
		name         string
		agencySigned bool
		clientSigned bool
	}{
		{"neither signed", false, false},
		{"agency only", true, false},
		{"both signed", true, true},
	}

	for _, st := range states {
		agreement := &models.Agreement{
			Status:       models.StatusPendingApplicantSignature,
			AgencySigned: st.agencySigned,
			ClientSigned: st.clientSigned,
		}
		assert.True(t, CheckSignatureProgress(agreement), st.name)

		for _, role := range []Role{RoleClient, RoleAgency} {
			step := CurrentStep(agreement, role)
			assert.GreaterOrEqual(t, step, StepPrepare, "%s / %s", st.name, role)
			assert.LessOrEqual(t, step, StepDone, "%s / %s", st.name, role)
		}
	}
}

func TestCheckSignatureProgressRejectsReversedOrder(t *testing.T) {
	agreement := &models.Agreement{
		Status:       models.StatusPendingApplicantSignature,
		AgencySigned: false,
		ClientSigned: true,
	}
	assert.False(t, CheckSignatureProgress(agreement))
}
