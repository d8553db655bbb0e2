package prepareagreementdocument

import (
	"context"

	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/models"
)

// Document modes selectable by the publisher in draft.
const (
	ModePlatform = "platform"
	ModeCustom   = "custom"
)

type Input struct {
	AgreementID string `json:"agreementId"`
	UserID      string `json:"userId"`
	Mode        string `json:"mode"`
	// Filename and FileContent (base64) are required for custom mode only.
	Filename    string `json:"filename,omitempty"`
	FileContent string `json:"fileContent,omitempty"`
}

type Output struct {
	DocumentReady     bool   `json:"documentReady"`
	IsCustomAgreement bool   `json:"isCustomAgreement"`
	Message           string `json:"message"`
}

// AgreementAPI is the slice of the marketplace client this worker needs.
type AgreementAPI interface {
	GetAgreementDetails(ctx context.Context, agreementID string) (*models.Agreement, error)
	ChoosePlatformAgreement(ctx context.Context, agreementID string) error
	UploadCustomAgreement(ctx context.Context, agreementID, filename string, content []byte) error
}

type ServiceDependencies struct {
	Logger      logger.Logger
	Marketplace AgreementAPI
}
