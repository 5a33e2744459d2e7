// Package notify announces finished audit runs over SNS and SES.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"indiamart-audit/internal/audit"
	awsclient "indiamart-audit/internal/common/aws"
	apperrors "indiamart-audit/internal/common/errors"
	"indiamart-audit/internal/common/logger"
)

// Define interfaces for mocking
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Config struct {
	Region     string
	SNSEnabled bool
	TopicARN   string
	SESEnabled bool
	FromEmail  string
	ToEmails   []string
}

func (c *Config) Enabled() bool {
	return c.SNSEnabled || c.SESEnabled
}

type Notifier struct {
	config    *Config
	snsClient SNSService
	sesClient SESService
	logger    logger.Logger
}

func NewNotifier(config *Config, snsClient SNSService, sesClient SESService, log logger.Logger) *Notifier {
	return &Notifier{
		config:    config,
		snsClient: snsClient,
		sesClient: sesClient,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// NewFromAWS builds a Notifier on SDK clients for the configured region.
func NewFromAWS(ctx context.Context, config *Config, log logger.Logger) (*Notifier, error) {
	awsCfg, err := awsclient.LoadConfig(ctx, config.Region)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewNotifier(config, awsclient.NewSNSClient(awsCfg), awsclient.NewSESClient(awsCfg), log), nil
}

// NotifyRunFinished publishes the run summary to every enabled channel. A
// failing channel does not stop the others.
func (n *Notifier) NotifyRunFinished(ctx context.Context, summary *audit.Summary) error {
	subject := Subject(summary)
	body := Body(summary)

	var errs []error
	if n.config.SNSEnabled {
		if err := n.publish(ctx, subject, body, summary); err != nil {
			errs = append(errs, apperrors.NewNotificationSendFailedError("sns", err))
		}
	}
	if n.config.SESEnabled && len(n.config.ToEmails) > 0 {
		if err := n.sendEmail(ctx, subject, body); err != nil {
			errs = append(errs, apperrors.NewNotificationSendFailedError("ses", err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	n.logger.Debug("run notification sent", map[string]interface{}{
		"sessionId": summary.SessionID,
		"sns":       n.config.SNSEnabled,
		"ses":       n.config.SESEnabled,
	})
	return nil
}

func (n *Notifier) publish(ctx context.Context, subject, body string, summary *audit.Summary) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.TopicARN),
		Subject:  aws.String(truncate(subject, 100)),
		Message:  aws.String(body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"sessionId": {DataType: aws.String("String"), StringValue: aws.String(summary.SessionID)},
			"status":    {DataType: aws.String("String"), StringValue: aws.String(string(summary.Status))},
		},
	})
	return err
}

func (n *Notifier) sendEmail(ctx context.Context, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: n.config.ToEmails,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	return err
}

func Subject(s *audit.Summary) string {
	return fmt.Sprintf("Audit %s %s: %d passed, %d errors", s.SessionID, s.Status, s.Passed, s.Errors)
}

// Body renders the summary as plain text, labels sorted.
func Body(s *audit.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", s.SessionID)
	fmt.Fprintf(&b, "Status: %s\n", s.Status)
	fmt.Fprintf(&b, "Records: %d (passed %d, errors %d)\n", s.TotalRecords, s.Passed, s.Errors)
	fmt.Fprintf(&b, "Advisory failures: %d\n", s.AdvisoryFailures)
	fmt.Fprintf(&b, "Duration: %dms\n", s.DurationMs)

	labels := make([]string, 0, len(s.ByLabel))
	for l := range s.ByLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	if len(labels) > 0 {
		b.WriteString("\nBy category label:\n")
		for _, l := range labels {
			fmt.Fprintf(&b, "  %s: %d\n", l, s.ByLabel[l])
		}
	}
	if s.Error != "" {
		fmt.Fprintf(&b, "\nError: %s\n", s.Error)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
