package resolvesigningstate

import (
	"context"

	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

type Input struct {
	AgreementID string `json:"agreementId"`
	UserID      string `json:"userId"`
	// ForceRefresh bypasses the snapshot cache, used right after a
	// mutation elsewhere in the process.
	ForceRefresh bool `json:"forceRefresh,omitempty"`
}

type Output struct {
	Role          string   `json:"role"`
	CurrentStep   int      `json:"currentStep"`
	CanSign       bool     `json:"canSign"`
	BlockState    string   `json:"blockState"`
	StatusMessage string   `json:"statusMessage"`
	NeedsFees     bool     `json:"needsFees"`
	LastKnownFee  *float64 `json:"lastKnownFee,omitempty"`
	Status        string   `json:"status"`
	AgencySigned  bool     `json:"agencySigned"`
	ClientSigned  bool     `json:"clientSigned"`
	FromCache     bool     `json:"fromCache"`
}

// AgreementAPI is the slice of the marketplace client this worker needs.
type AgreementAPI interface {
	GetAgreementDetails(ctx context.Context, agreementID string) (*models.Agreement, error)
}

type ServiceDependencies struct {
	Logger      logger.Logger
	Marketplace AgreementAPI
	Cache       *redis.Client
}
