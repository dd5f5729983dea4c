// Package notify delivers applicant notifications on terminal
// underwriting outcomes. Delivery failures are logged, never surfaced.
package notify

import (
	"context"
	"fmt"

	"loanflow/internal/common/config"
	"loanflow/internal/common/logger"
	"loanflow/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Notifier receives terminal-outcome events from the orchestrator.
type Notifier interface {
	NotifyOutcome(ctx context.Context, applicationID string, status models.Status)
}

// Interfaces for mocking the AWS clients.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// AWSNotifier sends outcome email via SES and, when enabled, SMS via SNS.
type AWSNotifier struct {
	cfg       config.NotificationConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

var _ Notifier = (*AWSNotifier)(nil)

func NewAWSNotifier(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*AWSNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &AWSNotifier{
		cfg:       cfg,
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
	}, nil
}

func (n *AWSNotifier) NotifyOutcome(ctx context.Context, applicationID string, status models.Status) {
	subject, body := outcomeMessage(applicationID, status)

	if n.cfg.Email.Enabled {
		// Recipient resolution is keyed off the application id topic;
		// applicant contact data lives outside this subsystem.
		input := &ses.SendEmailInput{
			Source: aws.String(n.cfg.Email.FromEmail),
			Destination: &sestypes.Destination{
				ToAddresses: []string{fmt.Sprintf("application+%s@notifications.loanflow", applicationID)},
			},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(body)},
				},
			},
		}
		if _, err := n.sesClient.SendEmail(ctx, input); err != nil {
			n.logger.Warn("outcome email send failed", map[string]interface{}{
				"error":         err.Error(),
				"applicationId": applicationID,
			})
		}
	}

	if n.cfg.SMS.Enabled {
		input := &sns.PublishInput{
			Message:  aws.String(body),
			TopicArn: aws.String(fmt.Sprintf("application-%s", applicationID)),
		}
		if _, err := n.snsClient.Publish(ctx, input); err != nil {
			n.logger.Warn("outcome SMS publish failed", map[string]interface{}{
				"error":         err.Error(),
				"applicationId": applicationID,
			})
		}
	}
}

func outcomeMessage(applicationID string, status models.Status) (subject, body string) {
	switch status {
	case models.StatusUnderwritingApproved:
		return "Your loan application was approved",
			fmt.Sprintf("Application %s has been approved.", applicationID)
	case models.StatusUnderwritingDeclined:
		return "Your loan application was declined",
			fmt.Sprintf("Application %s has been declined.", applicationID)
	default:
		return "Your loan application needs attention",
			fmt.Sprintf("Application %s could not be underwritten automatically; our team will follow up.", applicationID)
	}
}

// NopNotifier discards outcome events (tests, notifications disabled).
type NopNotifier struct{}

var _ Notifier = NopNotifier{}

func (NopNotifier) NotifyOutcome(context.Context, string, models.Status) {}
