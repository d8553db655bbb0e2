package indexbookedcontract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agreement-workers/internal/common/errors"
	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// Service indexes a fully signed agreement into the booked-contracts search
// index. It runs after both signatures land, so an agreement that is not
// yet terminal is a process ordering bug, not something to index.
type Service struct {
	logger      logger.Logger
	marketplace AgreementAPI
	es          *elasticsearch.Client
	config      *Config
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		logger:      deps.Logger,
		marketplace: deps.Marketplace,
		es:          deps.Elasticsearch,
		config:      config,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	agreement, err := s.marketplace.GetAgreementDetails(ctx, input.AgreementID)
	if err != nil {
		return nil, errors.NewAgreementFetchError(err)
	}

	if !agreement.IsTerminal() {
		return nil, errors.NewContractIndexError(
			fmt.Errorf("agreement %s is not fully signed (status %s)", agreement.ID, agreement.Status))
	}

	doc := buildDocument(agreement)

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.NewContractIndexError(fmt.Errorf("failed to marshal document: %w", err))
	}

	res, err := s.es.Index(
		s.config.IndexName,
		bytes.NewReader(body),
		s.es.Index.WithDocumentID(agreement.ID),
		s.es.Index.WithContext(ctx),
	)
	if err != nil {
		return nil, errors.NewContractIndexError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewContractIndexError(
			fmt.Errorf("elasticsearch index request failed: %s", res.Status()))
	}

	s.logger.Info("Booked contract indexed", map[string]interface{}{
		"agreementId": agreement.ID,
		"contractId":  agreement.ContractID,
		"index":       s.config.IndexName,
	})

	return &Output{
		Indexed: true,
		Index:   s.config.IndexName,
		DocID:   agreement.ID,
	}, nil
}

func buildDocument(agreement *models.Agreement) *models.BookedContract {
	doc := &models.BookedContract{
		AgreementID:     agreement.ID,
		AgreementNumber: agreement.AgreementNumber,
		ContractID:      agreement.ContractID,
		ClientUserID:    agreement.ClientUserID,
		AgencyUserID:    agreement.AgencyUserID,
		IsCustomDoc:     agreement.IsCustomAgreement,
		BookedAt:        time.Now().UTC(),
	}
	if fees := agreement.Fees(); fees != nil {
		doc.AgencyFees = fees.AgencyFees
		doc.FeeType = fees.FeeType
	}
	return doc
}
