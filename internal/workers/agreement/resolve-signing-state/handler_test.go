package resolvesigningstate

import (
	"context"
	"encoding/json"
	"testing"

	"agreement-workers/internal/common/errors"
	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgreementAPI struct {
	agreement *models.Agreement
	err       error
	calls     int
}

func (f *fakeAgreementAPI) GetAgreementDetails(ctx context.Context, agreementID string) (*models.Agreement, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.agreement, nil
}

func newTestService(t *testing.T, api AgreementAPI) (*Service, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := NewService(ServiceDependencies{
		Logger:      logger.NewTestLogger(t),
		Marketplace: api,
		Cache:       cache,
	}, DefaultConfig())

	return svc, mr
}

func feeAmount(v float64) *float64 {
	return &v
}

func TestExecuteResolvesAgencyState(t *testing.T) {
	api := &fakeAgreementAPI{
		agreement: &models.Agreement{
			ID:           "agr-1",
			Status:       models.StatusPendingApplicantFees,
			ClientUserID: "user-institute",
			AgencyUserID: "user-agency",
			AgreementData: &models.AgreementData{
				Fees: &models.FeeBlock{RequiresInput: true},
			},
		},
	}
	svc, _ := newTestService(t, api)

	output, err := svc.Execute(context.Background(), &Input{
		AgreementID: "agr-1",
		UserID:      "user-agency",
	})
	require.NoError(t, err)

	assert.Equal(t, "agency", output.Role)
	assert.Equal(t, 1, output.CurrentStep)
	assert.True(t, output.NeedsFees)
	assert.False(t, output.CanSign)
	assert.Equal(t, "fees_outstanding", output.BlockState)
	assert.False(t, output.FromCache)
}

func TestExecuteResolvesClientState(t *testing.T) {
	api := &fakeAgreementAPI{
		agreement: &models.Agreement{
			ID:           "agr-2",
			Status:       models.StatusPendingClientSignature,
			AgencySigned: true,
			ClientUserID: "user-institute",
			AgencyUserID: "user-agency",
			AgreementData: &models.AgreementData{
				Fees: &models.FeeBlock{AgencyFees: feeAmount(5000), FeeType: models.FeeTypeFixed},
			},
		},
	}
	svc, _ := newTestService(t, api)

	output, err := svc.Execute(context.Background(), &Input{
		AgreementID: "agr-2",
		UserID:      "user-institute",
	})
	require.NoError(t, err)

	assert.Equal(t, "client", output.Role)
	assert.Equal(t, 3, output.CurrentStep)
	assert.True(t, output.CanSign)
	assert.False(t, output.NeedsFees)
	if assert.NotNil(t, output.LastKnownFee) {
		assert.Equal(t, 5000.0, *output.LastKnownFee)
	}
}

func TestExecuteUnknownUserFails(t *testing.T) {
	api := &fakeAgreementAPI{
		agreement: &models.Agreement{
			ID:           "agr-3",
			Status:       models.StatusDraft,
			ClientUserID: "user-institute",
			AgencyUserID: "user-agency",
		},
	}
	svc, _ := newTestService(t, api)

	_, err := svc.Execute(context.Background(), &Input{
		AgreementID: "agr-3",
		UserID:      "user-stranger",
	})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeRoleUnresolved, stdErr.Code)
}

func TestExecuteServesFromCache(t *testing.T) {
	agreement := &models.Agreement{
		ID:           "agr-4",
		Status:       models.StatusPendingApplicantSignature,
		ClientUserID: "user-institute",
		AgencyUserID: "user-agency",
	}
	api := &fakeAgreementAPI{agreement: agreement}
	svc, mr := newTestService(t, api)

	data, err := json.Marshal(agreement)
	require.NoError(t, err)
	require.NoError(t, mr.Set(snapshotKey("agr-4"), string(data)))

	output, err := svc.Execute(context.Background(), &Input{
		AgreementID: "agr-4",
		UserID:      "user-agency",
	})
	require.NoError(t, err)

	assert.True(t, output.FromCache)
	assert.Zero(t, api.calls)
}

func TestExecuteForceRefreshBypassesCache(t *testing.T) {
	agreement := &models.Agreement{
		ID:           "agr-5",
		Status:       models.StatusPendingApplicantSignature,
		ClientUserID: "user-institute",
		AgencyUserID: "user-agency",
	}
	api := &fakeAgreementAPI{agreement: agreement}
	svc, mr := newTestService(t, api)

	// Stale cached copy claims fees are still required.
	stale := *agreement
	stale.Status = models.StatusPendingApplicantFees
	data, err := json.Marshal(&stale)
	require.NoError(t, err)
	require.NoError(t, mr.Set(snapshotKey("agr-5"), string(data)))

	output, err := svc.Execute(context.Background(), &Input{
		AgreementID:  "agr-5",
		UserID:       "user-agency",
		ForceRefresh: true,
	})
	require.NoError(t, err)

	assert.False(t, output.FromCache)
	assert.Equal(t, 1, api.calls)
	assert.Equal(t, models.StatusPendingApplicantSignature, output.Status)

	// The refresh also repopulated the cache.
	cached, err := mr.Get(snapshotKey("agr-5"))
	require.NoError(t, err)
	assert.Contains(t, cached, models.StatusPendingApplicantSignature)
}

func TestExecuteFetchErrorIsRetryable(t *testing.T) {
	api := &fakeAgreementAPI{err: assert.AnError}
	svc, _ := newTestService(t, api)

	_, err := svc.Execute(context.Background(), &Input{
		AgreementID: "agr-6",
		UserID:      "user-agency",
	})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAgreementFetchError, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestValidateInput(t *testing.T) {
	assert.NoError(t, validateInput(map[string]interface{}{
		"agreementId": "agr-1",
		"userId":      "user-1",
	}))
	assert.Error(t, validateInput(map[string]interface{}{
		"agreementId": "agr-1",
	}))
	assert.Error(t, validateInput(map[string]interface{}{
		"agreementId": "",
		"userId":      "user-1",
	}))
}
