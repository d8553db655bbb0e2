package signagreement

import (
	"context"
	"fmt"

	"agreement-workers/internal/common/errors"
	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/common/marketplace"
	"agreement-workers/internal/common/metrics"
	"agreement-workers/internal/models"
	"agreement-workers/internal/signing"

	"github.com/redis/go-redis/v9"
)

// Messages surfaced to the user on a successful signature. The booked
// variant is deliberately distinct: both parties have signed and the
// contract is active.
const (
	MessageSigned = "Your signature has been recorded. Waiting for the other party to sign."
	MessageBooked = "Agreement fully signed. The contract is now booked."
)

// Service handles the signature phase. The signing gate runs locally before
// any network call: an agency signer with outstanding fees, a duplicate
// signature, or an out-of-turn publisher never reaches the marketplace.
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
	submission := &models.SignatureSubmission{
		SignatureImage: input.SignatureImage,
		SignedName:     input.SignedName,
		TermsAccepted:  input.TermsAccepted,
	}
	if err := signing.ValidateSignatureSubmission(submission); err != nil {
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

	if err := signing.GuardSignature(agreement, role); err != nil {
		metrics.SignatureSubmissions.WithLabelValues(string(role), "blocked").Inc()
		return nil, err
	}

	result, err := s.marketplace.SignAgreement(ctx, input.AgreementID, submission)
	if err != nil {
		metrics.SignatureSubmissions.WithLabelValues(string(role), "rejected").Inc()
		if apiErr, ok := err.(*marketplace.APIError); ok {
			return nil, errors.NewSignatureSubmissionError(apiErr.Detail)
		}
		return nil, errors.NewSignatureSubmissionError(err.Error())
	}

	// Full re-fetch after the mutation: step and status come from the
	// persisted snapshot, never from the local assumption of success.
	refreshed, err := s.fetchAgreement(ctx, input.AgreementID)
	if err != nil {
		return nil, err
	}

	s.invalidateSnapshot(ctx, input.AgreementID)

	message := MessageSigned
	if result.BothSigned {
		message = MessageBooked
		metrics.AgreementsBooked.Inc()
	}
	metrics.SignatureSubmissions.WithLabelValues(string(role), "signed").Inc()

	s.logger.Info("Signature recorded", map[string]interface{}{
		"agreementId": input.AgreementID,
		"role":        string(role),
		"bothSigned":  result.BothSigned,
	})

	return &Output{
		Signed:      true,
		BothSigned:  result.BothSigned,
		Booked:      result.BothSigned,
		Message:     message,
		Role:        string(role),
		CurrentStep: signing.CurrentStep(refreshed, role),
		Status:      refreshed.Status,
	}, nil
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
