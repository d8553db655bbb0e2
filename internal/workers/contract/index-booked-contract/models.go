package indexbookedcontract

import (
	"context"

	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

type Input struct {
	AgreementID string `json:"agreementId"`
}

type Output struct {
	Indexed bool   `json:"indexed"`
	Index   string `json:"index"`
	DocID   string `json:"docId"`
}

// AgreementAPI is the slice of the marketplace client this worker needs.
type AgreementAPI interface {
	GetAgreementDetails(ctx context.Context, agreementID string) (*models.Agreement, error)
}

type ServiceDependencies struct {
	Logger        logger.Logger
	Marketplace   AgreementAPI
	Elasticsearch *elasticsearch.Client
}
