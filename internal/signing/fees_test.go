// internal/signing/fees_test.go
package signing

import (
	"testing"

	"agreement-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func feeAmount(v float64) *float64 {
	return &v
}

func agreementWithFees(status string, agencySigned bool, fees *models.FeeBlock) *models.Agreement {
	return &models.Agreement{
		ID:           "agr-1",
		Status:       status,
		AgencySigned: agencySigned,
		AgreementData: &models.AgreementData{
			Fees: fees,
		},
	}
}

func TestNeedsFees(t *testing.T) {
	tests := []struct {
		name      string
		agreement *models.Agreement
		expected  bool
	}{
		{
			name:      "requiresInput set and not signed",
			agreement: agreementWithFees(models.StatusPendingApplicantSignature, false, &models.FeeBlock{RequiresInput: true}),
			expected:  true,
		},
		{
			name:      "pending_applicant_fees status without fee block",
			agreement: &models.Agreement{ID: "agr-2", Status: models.StatusPendingApplicantFees},
			expected:  true,
		},
		{
			name:      "legacy pending_fees status",
			agreement: &models.Agreement{ID: "agr-3", Status: models.StatusPendingFees},
			expected:  true,
		},
		{
			name:      "fees already persisted clears stale requiresInput",
			agreement: agreementWithFees(models.StatusPendingApplicantFees, false, &models.FeeBlock{RequiresInput: true, AgencyFees: feeAmount(5000)}),
			expected:  false,
		},
		{
			name:      "applicant already signed",
			agreement: agreementWithFees(models.StatusPendingClientSignature, true, &models.FeeBlock{RequiresInput: true}),
			expected:  false,
		},
		{
			name:      "no fee signals at all",
			agreement: &models.Agreement{ID: "agr-4", Status: models.StatusPendingApplicantSignature},
			expected:  false,
		},
		{
			name: "professional applicant is always exempt",
			agreement: &models.Agreement{
				ID:                      "agr-5",
				Status:                  models.StatusPendingApplicantFees,
				ApplicantIsProfessional: true,
				AgreementData:           &models.AgreementData{Fees: &models.FeeBlock{RequiresInput: true}},
			},
			expected: false,
		},
		{
			name:      "zero fee amount does not satisfy the requirement",
			agreement: agreementWithFees(models.StatusPendingApplicantFees, false, &models.FeeBlock{RequiresInput: true, AgencyFees: feeAmount(0)}),
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NeedsFees(tt.agreement))
			// Pure function: repeat calls on the same snapshot agree.
			assert.Equal(t, tt.expected, NeedsFees(tt.agreement))
		})
	}
}

func TestLastKnownFee(t *testing.T) {
	t.Run("returns persisted amount", func(t *testing.T) {
		agreement := agreementWithFees(models.StatusPendingApplicantSignature, false, &models.FeeBlock{AgencyFees: feeAmount(5000)})
		fee := LastKnownFee(agreement)
		if assert.NotNil(t, fee) {
			assert.Equal(t, 5000.0, *fee)
		}
	})

	t.Run("nil when no fee recorded", func(t *testing.T) {
		assert.Nil(t, LastKnownFee(&models.Agreement{ID: "agr-6"}))
		assert.Nil(t, LastKnownFee(agreementWithFees(models.StatusDraft, false, &models.FeeBlock{AgencyFees: feeAmount(0)})))
	})
}
