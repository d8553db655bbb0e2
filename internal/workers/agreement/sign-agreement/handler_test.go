package signagreement

import (
	"context"
	"testing"

	"agreement-workers/internal/common/errors"
	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/common/marketplace"
	"agreement-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAgreementAPI simulates the marketplace: a successful signature flips
// the acting party's flag the way the real backend would.
type fakeAgreementAPI struct {
	agreement *models.Agreement
	signErr   error
	signCalls int
	signAs    string // which side the fake flips on sign
}

func (f *fakeAgreementAPI) GetAgreementDetails(ctx context.Context, agreementID string) (*models.Agreement, error) {
	snapshot := *f.agreement
	return &snapshot, nil
}

func (f *fakeAgreementAPI) SignAgreement(ctx context.Context, agreementID string, sig *models.SignatureSubmission) (*models.SignResult, error) {
	f.signCalls++
	if f.signErr != nil {
		return nil, f.signErr
	}
	switch f.signAs {
	case "agency":
		f.agreement.AgencySigned = true
		f.agreement.Status = models.StatusPendingClientSignature
	case "client":
		f.agreement.ClientSigned = true
	}
	if f.agreement.AgencySigned && f.agreement.ClientSigned {
		f.agreement.Status = models.StatusFullySigned
		return &models.SignResult{BothSigned: true}, nil
	}
	return &models.SignResult{BothSigned: false}, nil
}

func validInput(agreementID, userID string) *Input {
	return &Input{
		AgreementID:    agreementID,
		UserID:         userID,
		SignatureImage: "data:image/png;base64,iVBORw0KGgo=",
		SignedName:     "Jane Smith",
		TermsAccepted:  true,
	}
}

func newTestService(t *testing.T, api AgreementAPI) *Service {
	t.Helper()
	return NewService(ServiceDependencies{
		Logger:      logger.NewTestLogger(t),
		Marketplace: api,
	}, DefaultConfig())
}

func TestExecuteAgencySignsFirst(t *testing.T) {
	api := &fakeAgreementAPI{
		agreement: &models.Agreement{
			ID:           "agr-1",
			Status:       models.StatusPendingApplicantSignature,
			ClientUserID: "user-institute",
			AgencyUserID: "user-agency",
		},
		signAs: "agency",
	}
	svc := newTestService(t, api)

	output, err := svc.Execute(context.Background(), validInput("agr-1", "user-agency"))
	require.NoError(t, err)

	assert.True(t, output.Signed)
	assert.False(t, output.BothSigned)
	assert.Equal(t, MessageSigned, output.Message)
	assert.Equal(t, "agency", output.Role)
	assert.Equal(t, 3, output.CurrentStep, "applicant now waits on the publisher")
}

func TestExecuteClientSignatureCompletesAgreement(t *testing.T) {
	api := &fakeAgreementAPI{
		agreement: &models.Agreement{
			ID:           "agr-2",
			Status:       models.StatusPendingClientSignature,
			AgencySigned: true,
			ClientUserID: "user-institute",
			AgencyUserID: "user-agency",
		},
		signAs: "client",
	}
	svc := newTestService(t, api)

	output, err := svc.Execute(context.Background(), validInput("agr-2", "user-institute"))
	require.NoError(t, err)

	assert.True(t, output.BothSigned)
	assert.True(t, output.Booked)
	assert.Equal(t, MessageBooked, output.Message, "booked completion gets its own message")
	assert.Equal(t, 4, output.CurrentStep)
	assert.Equal(t, models.StatusFullySigned, output.Status)
}

func TestExecuteBlocksAgencyWithOutstandingFees(t *testing.T) {
	api := &fakeAgreementAPI{
		agreement: &models.Agreement{
			ID:           "agr-3",
			Status:       models.StatusPendingApplicantFees,
			ClientUserID: "user-institute",
			AgencyUserID: "user-agency",
			AgreementData: &models.AgreementData{
				Fees: &models.FeeBlock{RequiresInput: true},
			},
		},
		signAs: "agency",
	}
	svc := newTestService(t, api)

	_, err := svc.Execute(context.Background(), validInput("agr-3", "user-agency"))
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeFeesOutstanding, stdErr.Code)
	assert.Zero(t, api.signCalls, "signature must never be sent while fees are pending")
}

func TestExecuteBlocksClientOutOfTurn(t *testing.T) {
	api := &fakeAgreementAPI{
		agreement: &models.Agreement{
			ID:           "agr-4",
			Status:       models.StatusPendingApplicantSignature,
			ClientUserID: "user-institute",
			AgencyUserID: "user-agency",
		},
		signAs: "client",
	}
	svc := newTestService(t, api)

	_, err := svc.Execute(context.Background(), validInput("agr-4", "user-institute"))
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSigningOutOfTurn, stdErr.Code)
	assert.Zero(t, api.signCalls)
}

func TestExecuteBlocksDuplicateSignature(t *testing.T) {
	api := &fakeAgreementAPI{
		agreement: &models.Agreement{
			ID:           "agr-5",
			Status:       models.StatusPendingClientSignature,
			AgencySigned: true,
			ClientUserID: "user-institute",
			AgencyUserID: "user-agency",
		},
		signAs: "agency",
	}
	svc := newTestService(t, api)

	_, err := svc.Execute(context.Background(), validInput("agr-5", "user-agency"))
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAlreadySigned, stdErr.Code)
	assert.Zero(t, api.signCalls)
}

func TestExecuteRejectsInvalidInputBeforeNetwork(t *testing.T) {
	api := &fakeAgreementAPI{agreement: &models.Agreement{ID: "agr-6"}}
	svc := newTestService(t, api)

	cases := []func(*Input){
		func(in *Input) { in.SignedName = "" },
		func(in *Input) { in.TermsAccepted = false },
		func(in *Input) { in.SignatureImage = "" },
	}
	for _, mutate := range cases {
		input := validInput("agr-6", "user-agency")
		mutate(input)
		_, err := svc.Execute(context.Background(), input)
		require.Error(t, err)
		stdErr, ok := err.(*errors.StandardError)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeSignatureValidationFailed, stdErr.Code)
	}
	assert.Zero(t, api.signCalls)
}

func TestExecuteRespectsServerDenial(t *testing.T) {
	canSign := false
	api := &fakeAgreementAPI{
		agreement: &models.Agreement{
			ID:            "agr-7",
			Status:        models.StatusPendingClientSignature,
			AgencySigned:  true,
			ClientUserID:  "user-institute",
			AgencyUserID:  "user-agency",
			CanSign:       &canSign,
			StatusMessage: "Agreement is under compliance review",
		},
		signAs: "client",
	}
	svc := newTestService(t, api)

	_, err := svc.Execute(context.Background(), validInput("agr-7", "user-institute"))
	require.Error(t, err)
	assert.Zero(t, api.signCalls, "server can_sign=false is authoritative")
}

func TestExecuteSurfacesServerErrorVerbatim(t *testing.T) {
	api := &fakeAgreementAPI{
		agreement: &models.Agreement{
			ID:           "agr-8",
			Status:       models.StatusPendingApplicantSignature,
			ClientUserID: "user-institute",
			AgencyUserID: "user-agency",
		},
		signErr: &marketplace.APIError{
			StatusCode: 409,
			Operation:  "sign agreement",
			Detail:     "Agreement was signed by another session",
		},
		signAs: "agency",
	}
	svc := newTestService(t, api)

	_, err := svc.Execute(context.Background(), validInput("agr-8", "user-agency"))
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSignatureSubmissionFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "Agreement was signed by another session")
	assert.False(t, stdErr.Retryable)
}

func TestValidateInput(t *testing.T) {
	assert.NoError(t, validateInput(map[string]interface{}{
		"agreementId":    "agr-1",
		"userId":         "user-1",
		"signatureImage": "data:image/png;base64,iVBORw0KGgo=",
		"signedName":     "Jane Smith",
		"termsAccepted":  true,
	}))
	assert.Error(t, validateInput(map[string]interface{}{
		"agreementId":    "agr-1",
		"userId":         "user-1",
		"signatureImage": "",
		"signedName":     "Jane Smith",
		"termsAccepted":  true,
	}))
	assert.Error(t, validateInput(map[string]interface{}{
		"agreementId": "agr-1",
		"userId":      "user-1",
	}))
}
