// internal/signing/validate_test.go
package signing

import (
	"testing"

	"agreement-workers/internal/common/errors"
	"agreement-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFeeSubmission(t *testing.T) {
	tests := []struct {
		name    string
		sub     *models.FeeSubmission
		wantErr bool
	}{
		{"valid fixed fee", &models.FeeSubmission{Amount: 5000, FeeType: models.FeeTypeFixed}, false},
		{"valid percentage fee", &models.FeeSubmission{Amount: 12.5, FeeType: models.FeeTypePercentage}, false},
		{"zero amount", &models.FeeSubmission{Amount: 0, FeeType: models.FeeTypeFixed}, true},
		{"negative amount", &models.FeeSubmission{Amount: -100, FeeType: models.FeeTypeFixed}, true},
		{"unknown fee type", &models.FeeSubmission{Amount: 5000, FeeType: "hourly"}, true},
		{"missing fee type", &models.FeeSubmission{Amount: 5000}, true},
		{"nil submission", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFeeSubmission(tt.sub)
			if tt.wantErr {
				require.Error(t, err)
				stdErr, ok := err.(*errors.StandardError)
				require.True(t, ok)
				assert.Equal(t, errors.ErrCodeFeeValidationFailed, stdErr.Code)
				assert.False(t, stdErr.Retryable)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSignatureSubmission(t *testing.T) {
	valid := models.SignatureSubmission{
		SignatureImage: "data:image/png;base64,iVBORw0KGgo=",
		SignedName:     "Jane Smith",
		TermsAccepted:  true,
	}

	t.Run("valid submission passes", func(t *testing.T) {
		sub := valid
		assert.NoError(t, ValidateSignatureSubmission(&sub))
	})

	t.Run("empty signed name", func(t *testing.T) {
		sub := valid
		sub.SignedName = ""
		assert.Error(t, ValidateSignatureSubmission(&sub))
	})

	t.Run("terms not accepted", func(t *testing.T) {
		sub := valid
		sub.TermsAccepted = false
		assert.Error(t, ValidateSignatureSubmission(&sub))
	})

	t.Run("signature image missing", func(t *testing.T) {
		sub := valid
		sub.SignatureImage = ""
		assert.Error(t, ValidateSignatureSubmission(&sub))
	})
}

func TestGuardSignature(t *testing.T) {
	t.Run("agency with outstanding fees is rejected before any network call", func(t *testing.T) {
		agreement := &models.Agreement{
			ID:            "agr-1",
			Status:        models.StatusPendingApplicantFees,
			AgreementData: &models.AgreementData{Fees: &models.FeeBlock{RequiresInput: true}},
		}
		err := GuardSignature(agreement, RoleAgency)
		require.Error(t, err)
		stdErr, ok := err.(*errors.StandardError)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeFeesOutstanding, stdErr.Code)
	})

	t.Run("duplicate signature attempt", func(t *testing.T) {
		agreement := &models.Agreement{ID: "agr-2", AgencySigned: true}
		err := GuardSignature(agreement, RoleAgency)
		require.Error(t, err)
		stdErr, ok := err.(*errors.StandardError)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeAlreadySigned, stdErr.Code)
	})

	t.Run("client signing out of turn", func(t *testing.T) {
		agreement := &models.Agreement{ID: "agr-3", Status: models.StatusPendingApplicantSignature}
		err := GuardSignature(agreement, RoleClient)
		require.Error(t, err)
		stdErr, ok := err.(*errors.StandardError)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeSigningOutOfTurn, stdErr.Code)
	})

	t.Run("clear to sign", func(t *testing.T) {
		agreement := &models.Agreement{
			ID:           "agr-4",
			Status:       models.StatusPendingClientSignature,
			AgencySigned: true,
		}
		assert.NoError(t, GuardSignature(agreement, RoleClient))
	})
}
