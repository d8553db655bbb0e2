package submitagencyfees

import (
	"context"
	"fmt"

	"agreement-workers/internal/common/errors"
	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/common/marketplace"
	"agreement-workers/internal/models"
	"agreement-workers/internal/signing"

	"github.com/redis/go-redis/v9"
)

// Service handles the fee phase of the two-phase applicant flow. Validation
// happens before any network call; success is confirmed against the
// re-fetched snapshot, never assumed from the write response alone.
type Service struct {
	logger      logger.Logger
	marketplace AgreementAPI
	cache       *redis.Client
	config      *Config
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		logger:      deps.Logger,
		marketplace: deps.Marketplace,
		cache:       deps.Cache,
		config:      config,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	submission := &models.FeeSubmission{
		Amount:      input.Amount,
		FeeType:     input.FeeType,
		Description: input.Description,
	}
	if err := signing.ValidateFeeSubmission(submission); err != nil {
		return nil, err
	}

	agreement, err := s.fetchAgreement(ctx, input.AgreementID)
	if err != nil {
		return nil, err
	}

	role, err := signing.ResolveRole(agreement, input.UserID)
	if err != nil {
		return nil, err
	}
	if role != signing.RoleAgency {
		return nil, errors.NewFeeValidationError("only the applicant side submits placement fees")
	}

	if !signing.NeedsFees(agreement) {
		// Idempotent completion: fees already satisfied or never required.
		out := s.buildOutput(agreement, true, "Placement fee already satisfied")
		return out, nil
	}

	if err := s.marketplace.UpdateAgreementFees(ctx, input.AgreementID, submission); err != nil {
		if apiErr, ok := err.(*marketplace.APIError); ok {
			return nil, errors.NewFeeSubmissionError(apiErr.Detail)
		}
		return nil, errors.NewFeeSubmissionError(err.Error())
	}

	// Full re-fetch after the mutation: the persisted snapshot is the only
	// source of truth for whether the fee requirement cleared.
	refreshed, err := s.fetchAgreement(ctx, input.AgreementID)
	if err != nil {
		return nil, err
	}

	s.invalidateSnapshot(ctx, input.AgreementID)

	if signing.NeedsFees(refreshed) {
		return nil, errors.NewFeeSubmissionError("fee submission did not persist; agreement still reports fees outstanding")
	}

	s.logger.Info("Placement fee submitted", map[string]interface{}{
		"agreementId": input.AgreementID,
		"amount":      input.Amount,
		"feeType":     input.FeeType,
	})

	return s.buildOutput(refreshed, true, "Placement fee submitted"), nil
}

func (s *Service) buildOutput(agreement *models.Agreement, submitted bool, message string) *Output {
	return &Output{
		FeesSubmitted: submitted,
		Message:       message,
		PersistedFee:  signing.LastKnownFee(agreement),
		NeedsFees:     signing.NeedsFees(agreement),
		CurrentStep:   signing.CurrentStep(agreement, signing.RoleAgency),
	}
}

func (s *Service) fetchAgreement(ctx context.Context, agreementID string) (*models.Agreement, error) {
	agreement, err := s.marketplace.GetAgreementDetails(ctx, agreementID)
	if err != nil {
		if stdErr, ok := err.(*errors.StandardError); ok {
			return nil, stdErr
		}
		if apiErr, ok := err.(*marketplace.APIError); ok && apiErr.StatusCode == 404 {
			return nil, errors.NewAgreementNotFoundError(agreementID)
		}
		return nil, errors.NewAgreementFetchError(err)
	}
	return agreement, nil
}

func (s *Service) invalidateSnapshot(ctx context.Context, agreementID string) {
	if s.cache == nil {
		return
	}
	key := fmt.Sprintf("agreement:snapshot:%s", agreementID)
	if err := s.cache.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("Failed to invalidate snapshot cache", map[string]interface{}{
			"agreementId": agreementID,
			"error":       err.Error(),
		})
	}
}
