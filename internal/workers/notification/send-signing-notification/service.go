package sendsigningnotification

import (
	"context"
	"fmt"
	"time"

	"agreement-workers/internal/common/errors"
	"agreement-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

// Service delivers signing lifecycle notifications over email (SES) and,
// when enabled, SMS (SNS). Delivery is best-effort per channel: a channel
// with no recipient address is skipped, but if every enabled channel is
// skipped the job fails with a recipient error so the process can route it.
type Service struct {
	logger logger.Logger
	ses    SESService
	sns    SNSService
	config *Config
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		logger: deps.Logger,
		ses:    deps.SES,
		sns:    deps.SNS,
		config: config,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	tmpl, exists := eventTemplates[input.Event]
	if !exists {
		return nil, errors.NewNotificationSendError("template",
			fmt.Errorf("no template for event %q", input.Event))
	}

	data := map[string]interface{}{
		"agreementId":     input.AgreementID,
		"agreementNumber": input.AgreementNumber,
		"event":           input.Event,
		"message":         input.Message,
	}
	for k, v := range input.Metadata {
		data[k] = v
	}

	subject := renderTemplate(tmpl.Subject, data)
	body := renderTemplate(tmpl.Body, data)
	if input.Message != "" && input.Event != EventSigningRejected {
		body = body + "\n\n" + input.Message
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	emailWanted := s.config.EmailEnabled && input.RecipientEmail != ""
	smsWanted := s.config.SMSEnabled && input.RecipientPhone != ""

	if !emailWanted && !smsWanted {
		if !s.config.EmailEnabled && !s.config.SMSEnabled {
			// All channels switched off by configuration: succeed quietly.
			output.Status = StatusDisabled
			return output, nil
		}
		channel := "email"
		if s.config.SMSEnabled && !s.config.EmailEnabled {
			channel = "sms"
		}
		return nil, errors.NewRecipientUnavailableError(channel)
	}

	if emailWanted {
		if err := s.sendEmail(ctx, input.RecipientEmail, subject, body); err != nil {
			s.logger.Error("Email delivery failed", map[string]interface{}{
				"agreementId": input.AgreementID,
				"event":       input.Event,
				"error":       err.Error(),
			})
			return nil, errors.NewNotificationSendError("email", err)
		}
		output.EmailSent = true
	}

	if smsWanted {
		if err := s.sendSMS(ctx, input.RecipientPhone, body); err != nil {
			s.logger.Error("SMS delivery failed", map[string]interface{}{
				"agreementId": input.AgreementID,
				"event":       input.Event,
				"error":       err.Error(),
			})
			return nil, errors.NewNotificationSendError("sms", err)
		}
		output.SMSSent = true
	}

	output.Status = StatusSent

	s.logger.Info("Signing notification delivered", map[string]interface{}{
		"notificationId": output.NotificationID,
		"agreementId":    input.AgreementID,
		"event":          input.Event,
		"emailSent":      output.EmailSent,
		"smsSent":        output.SMSSent,
	})

	return output, nil
}

func (s *Service) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := s.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(s.config.FromEmail),
	})
	return err
}

func (s *Service) sendSMS(ctx context.Context, to, message string) error {
	_, err := s.sns.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}
