package prepareagreementdocument

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"agreement-workers/internal/common/errors"
	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/common/marketplace"
	"agreement-workers/internal/models"
	"agreement-workers/internal/signing"
)

// Service handles the publisher's step-1 document choice: either the
// platform template or a custom PDF/DOCX upload. Only the publisher may
// choose, and only while the agreement is still in draft.
type Service struct {
	logger      logger.Logger
	marketplace AgreementAPI
	config      *Config
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		logger:      deps.Logger,
		marketplace: deps.Marketplace,
		config:      config,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	agreement, err := s.marketplace.GetAgreementDetails(ctx, input.AgreementID)
	if err != nil {
		if apiErr, ok := err.(*marketplace.APIError); ok && apiErr.StatusCode == 404 {
			return nil, errors.NewAgreementNotFoundError(input.AgreementID)
		}
		return nil, errors.NewAgreementFetchError(err)
	}

	role, err := signing.ResolveRole(agreement, input.UserID)
	if err != nil {
		return nil, err
	}
	if role != signing.RoleClient {
		return nil, errors.NewDocumentValidationError("only the publisher chooses the agreement document")
	}
	if agreement.Status != models.StatusDraft {
		return nil, errors.NewDocumentValidationError(
			fmt.Sprintf("document can only be chosen in draft, agreement is %s", agreement.Status))
	}

	switch input.Mode {
	case ModePlatform:
		if err := s.marketplace.ChoosePlatformAgreement(ctx, input.AgreementID); err != nil {
			return nil, s.wrapDocumentError(err)
		}
		s.logger.Info("Platform agreement selected", map[string]interface{}{
			"agreementId": input.AgreementID,
		})
		return &Output{
			DocumentReady: true,
			Message:       "Platform agreement template selected",
		}, nil

	case ModeCustom:
		content, err := s.decodeAndValidate(input)
		if err != nil {
			return nil, err
		}
		if err := s.marketplace.UploadCustomAgreement(ctx, input.AgreementID, input.Filename, content); err != nil {
			return nil, s.wrapDocumentError(err)
		}
		s.logger.Info("Custom agreement uploaded", map[string]interface{}{
			"agreementId": input.AgreementID,
			"filename":    input.Filename,
			"sizeBytes":   len(content),
		})
		return &Output{
			DocumentReady:     true,
			IsCustomAgreement: true,
			Message:           "Custom agreement document uploaded",
		}, nil

	default:
		return nil, errors.NewDocumentValidationError(
			fmt.Sprintf("unknown document mode %q", input.Mode))
	}
}

func (s *Service) decodeAndValidate(input *Input) ([]byte, error) {
	if input.Filename == "" || input.FileContent == "" {
		return nil, errors.NewDocumentValidationError("custom mode requires filename and fileContent")
	}

	ext := strings.ToLower(filepath.Ext(input.Filename))
	if ext != ".pdf" && ext != ".docx" {
		return nil, errors.NewDocumentValidationError(
			fmt.Sprintf("unsupported document type %q: only PDF and DOCX are accepted", ext))
	}

	content, err := base64.StdEncoding.DecodeString(input.FileContent)
	if err != nil {
		return nil, errors.NewDocumentValidationError("fileContent is not valid base64")
	}
	if len(content) == 0 {
		return nil, errors.NewDocumentValidationError("document is empty")
	}
	if int64(len(content)) > s.config.MaxUploadBytes {
		return nil, errors.NewDocumentValidationError(
			fmt.Sprintf("document size %d exceeds limit of %d bytes", len(content), s.config.MaxUploadBytes))
	}

	return content, nil
}

func (s *Service) wrapDocumentError(err error) error {
	if apiErr, ok := err.(*marketplace.APIError); ok {
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return errors.NewDocumentValidationError(apiErr.Detail)
		}
	}
	return errors.NewDocumentUploadError(err)
}
