package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanflow/internal/common/config"
	"loanflow/internal/common/logger"
	"loanflow/internal/models"
)

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

func testNotifier(t *testing.T, emailEnabled, smsEnabled bool) (*AWSNotifier, *mockSES, *mockSNS) {
	cfg := config.NotificationConfig{}
	cfg.Email.Enabled = emailEnabled
	cfg.Email.FromEmail = "noreply@loanflow.example"
	cfg.SMS.Enabled = smsEnabled

	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	return &AWSNotifier{
		cfg:       cfg,
		sesClient: sesMock,
		snsClient: snsMock,
		logger:    logger.NewTestLogger(t),
	}, sesMock, snsMock
}

func TestNotifyOutcomeApproved(t *testing.T) {
	notifier, sesMock, snsMock := testNotifier(t, true, true)

	notifier.NotifyOutcome(context.Background(), "app-1", models.StatusUnderwritingApproved)

	require.Len(t, sesMock.inputs, 1)
	assert.Contains(t, *sesMock.inputs[0].Message.Subject.Data, "approved")
	assert.Equal(t, "noreply@loanflow.example", *sesMock.inputs[0].Source)

	require.Len(t, snsMock.inputs, 1)
	assert.Contains(t, *snsMock.inputs[0].Message, "app-1")
}

func TestNotifyOutcomeDeclined(t *testing.T) {
	notifier, sesMock, _ := testNotifier(t, true, false)

	notifier.NotifyOutcome(context.Background(), "app-1", models.StatusUnderwritingDeclined)

	require.Len(t, sesMock.inputs, 1)
	assert.Contains(t, *sesMock.inputs[0].Message.Subject.Data, "declined")
}

func TestNotifyOutcomeFailureUsesFallbackMessage(t *testing.T) {
	notifier, sesMock, _ := testNotifier(t, true, false)

	notifier.NotifyOutcome(context.Background(), "app-1", models.StatusUnderwritingFailure)

	require.Len(t, sesMock.inputs, 1)
	assert.Contains(t, *sesMock.inputs[0].Message.Body.Text.Data, "could not be underwritten")
}

func TestNotifyOutcomeChannelsDisabled(t *testing.T) {
	notifier, sesMock, snsMock := testNotifier(t, false, false)

	notifier.NotifyOutcome(context.Background(), "app-1", models.StatusUnderwritingApproved)

	assert.Empty(t, sesMock.inputs)
	assert.Empty(t, snsMock.inputs)
}

func TestNotifyOutcomeDeliveryFailureSwallowed(t *testing.T) {
	notifier, sesMock, snsMock := testNotifier(t, true, true)
	sesMock.err = errors.New("ses throttled")
	snsMock.err = errors.New("sns unavailable")

	// Must not panic or surface an error.
	notifier.NotifyOutcome(context.Background(), "app-1", models.StatusUnderwritingApproved)

	assert.Len(t, sesMock.inputs, 1)
	assert.Len(t, snsMock.inputs, 1)
}
