package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"esfhub/internal/config"
	"esfhub/internal/domain"
	"esfhub/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	toAddress   string
}

// NewSESSender creates a new SES-backed Notifier.
func NewSESSender(cfg config.EmailConfig) (port.Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(awsCfg),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		toAddress:   cfg.NotifyAddress,
	}, nil
}

func (s *sesSender) NotifyDocumentFailed(ctx context.Context, doc *domain.ESFDocument, reason string) error {
	if s.toAddress == "" {
		return nil
	}

	subject := fmt.Sprintf("ESF document %s was rejected by GNS", doc.DocumentUUID)
	htmlBody := buildFailureHTML(doc, reason)
	textBody := fmt.Sprintf("ESF document %s (legal person TIN %s) failed to submit.\n\nReason: %s\n\nESF Service",
		doc.DocumentUUID, doc.LegalPersonTIN, reason)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
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

func buildFailureHTML(doc *domain.ESFDocument, reason string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">ESF submission failed</h2>
  <p>Document <strong>%s</strong> for legal person TIN <strong>%s</strong> was not accepted by GNS.</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">ESF Service</p>
</body>
</html>`, doc.DocumentUUID, html.EscapeString(doc.LegalPersonTIN), html.EscapeString(reason))
}
