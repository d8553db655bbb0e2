package signagreement

import (
	"context"

	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

type Input struct {
	AgreementID    string `json:"agreementId"`
	UserID         string `json:"userId"`
	SignatureImage string `json:"signatureImage"`
	SignedName     string `json:"signedName"`
	TermsAccepted  bool   `json:"termsAccepted"`
}

type Output struct {
	Signed      bool   `json:"signed"`
	BothSigned  bool   `json:"bothSigned"`
	Booked      bool   `json:"booked"`
	Message     string `json:"message"`
	Role        string `json:"role"`
	CurrentStep int    `json:"currentStep"`
	Status      string `json:"status"`
}

// AgreementAPI is the slice of the marketplace client this worker needs.
type AgreementAPI interface {
	GetAgreementDetails(ctx context.Context, agreementID string) (*models.Agreement, error)
	SignAgreement(ctx context.Context, agreementID string, sig *models.SignatureSubmission) (*models.SignResult, error)
}

type ServiceDependencies struct {
	Logger      logger.Logger
	Marketplace AgreementAPI
	Cache       *redis.Client
}
