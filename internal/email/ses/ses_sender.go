package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"mediaflow/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendRunFailureEmail(ctx context.Context, toEmail string, report port.RunReport) error {
	subject := fmt.Sprintf("Deployment failed: %s", report.AssetName)
	htmlBody := buildRunFailureHTML(report)
	textBody := fmt.Sprintf(
		"Deployment run %s for %s finished with status %q after %d ms.\n\nError: %s\n",
		report.RunID, report.AssetName, report.Status, report.DurationMS, report.Error,
	)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildRunFailureHTML(report port.RunReport) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Deployment failed</h2>
  <p>The deployment run for <strong>%s</strong> did not complete.</p>
  <table style="border-collapse: collapse; width: 100%%;">
    <tr><td style="padding: 6px; color: #666;">Run ID</td><td style="padding: 6px;">%s</td></tr>
    <tr><td style="padding: 6px; color: #666;">Status</td><td style="padding: 6px;">%s</td></tr>
    <tr><td style="padding: 6px; color: #666;">Duration</td><td style="padding: 6px;">%d ms</td></tr>
    <tr><td style="padding: 6px; color: #666;">Error</td><td style="padding: 6px; word-break: break-all;">%s</td></tr>
  </table>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">MediaFlow - Media Deployment Pipeline</p>
</body>
</html>`, report.AssetName, report.RunID, report.Status, report.DurationMS, report.Error)
}
