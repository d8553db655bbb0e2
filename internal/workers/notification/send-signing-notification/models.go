package sendsigningnotification

import (
	"context"

	"agreement-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type Input struct {
	AgreementID     string                 `json:"agreementId"`
	AgreementNumber string                 `json:"agreementNumber"`
	RecipientEmail  string                 `json:"recipientEmail,omitempty"`
	RecipientPhone  string                 `json:"recipientPhone,omitempty"`
	Event           string                 `json:"event"`
	Message         string                 `json:"message,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
	SentAt         string `json:"sentAt"`
}

// Signing lifecycle events the worker knows how to phrase.
const (
	EventFeesRequired     = "fees_required"
	EventAwaitingAgency   = "awaiting_agency_signature"
	EventAwaitingClient   = "awaiting_client_signature"
	EventAgreementBooked  = "booked"
	EventSigningRejected  = "submission_rejected"
	EventDocumentPrepared = "document_prepared"
)

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// SESService and SNSService mirror the slices of the AWS SDK v2 clients the
// worker calls, so tests can substitute mocks.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type ServiceDependencies struct {
	Logger logger.Logger
	SES    SESService
	SNS    SNSService
}
