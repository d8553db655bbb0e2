package resolvesigningstate

import (
	"context"
	"encoding/json"
	"fmt"

	"agreement-workers/internal/common/errors"
	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/models"
	"agreement-workers/internal/signing"

	"github.com/redis/go-redis/v9"
)

// Service resolves the full signing state for one viewer of one agreement:
// role projection, step, gate decision, and fee requirement, all derived
// from the server-authoritative snapshot.
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

func snapshotKey(agreementID string) string {
	return fmt.Sprintf("agreement:snapshot:%s", agreementID)
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	agreement, fromCache, err := s.fetchSnapshot(ctx, input.AgreementID, input.ForceRefresh)
	if err != nil {
		return nil, err
	}

	role, err := signing.ResolveRole(agreement, input.UserID)
	if err != nil {
		return nil, err
	}

	decision := signing.Evaluate(agreement, role)

	output := &Output{
		Role:          string(role),
		CurrentStep:   signing.CurrentStep(agreement, role),
		CanSign:       decision.CanSign,
		BlockState:    string(decision.State),
		StatusMessage: decision.Message,
		NeedsFees:     signing.NeedsFees(agreement),
		LastKnownFee:  signing.LastKnownFee(agreement),
		Status:        agreement.Status,
		AgencySigned:  agreement.AgencySigned,
		ClientSigned:  agreement.ClientSigned,
		FromCache:     fromCache,
	}

	s.logger.Info("Resolved signing state", map[string]interface{}{
		"agreementId": input.AgreementID,
		"role":        output.Role,
		"currentStep": output.CurrentStep,
		"canSign":     output.CanSign,
		"blockState":  output.BlockState,
		"fromCache":   fromCache,
	})

	return output, nil
}

// fetchSnapshot returns the agreement, serving from cache when allowed and
// refreshing the cache on every marketplace fetch. Cache failures degrade
// to a direct fetch, never a job failure.
func (s *Service) fetchSnapshot(ctx context.Context, agreementID string, forceRefresh bool) (*models.Agreement, bool, error) {
	key := snapshotKey(agreementID)

	if s.cache != nil && !forceRefresh {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var agreement models.Agreement
			if jsonErr := json.Unmarshal([]byte(cached), &agreement); jsonErr == nil {
				return &agreement, true, nil
			}
			// Corrupt entry: drop it and re-fetch.
			s.cache.Del(ctx, key)
		} else if err != redis.Nil {
			s.logger.Warn("Snapshot cache read failed, fetching directly", map[string]interface{}{
				"agreementId": agreementID,
				"error":       err.Error(),
			})
		}
	}

	agreement, err := s.marketplace.GetAgreementDetails(ctx, agreementID)
	if err != nil {
		if stdErr, ok := err.(*errors.StandardError); ok {
			return nil, false, stdErr
		}
		return nil, false, errors.NewAgreementFetchError(err)
	}

	if s.cache != nil && s.config.SnapshotTTL > 0 {
		if data, jsonErr := json.Marshal(agreement); jsonErr == nil {
			if setErr := s.cache.Set(ctx, key, data, s.config.SnapshotTTL).Err(); setErr != nil {
				s.logger.Warn("Snapshot cache write failed", map[string]interface{}{
					"agreementId": agreementID,
					"error":       setErr.Error(),
				})
			}
		}
	}

	return agreement, false, nil
}
