package submitagencyfees

import (
	"context"

	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

type Input struct {
	AgreementID string  `json:"agreementId"`
	UserID      string  `json:"userId"`
	Amount      float64 `json:"amount"`
	FeeType     string  `json:"feeType"`
	Description string  `json:"description,omitempty"`
}

type Output struct {
	FeesSubmitted bool     `json:"feesSubmitted"`
	Message       string   `json:"message"`
	PersistedFee  *float64 `json:"persistedFee,omitempty"`
	NeedsFees     bool     `json:"needsFees"`
	CurrentStep   int      `json:"currentStep"`
}

// AgreementAPI is the slice of the marketplace client this worker needs.
type AgreementAPI interface {
	GetAgreementDetails(ctx context.Context, agreementID string) (*models.Agreement, error)
	UpdateAgreementFees(ctx context.Context, agreementID string, fees *models.FeeSubmission) error
}

type ServiceDependencies struct {
	Logger      logger.Logger
	Marketplace AgreementAPI
	Cache       *redis.Client
}
