package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"filewise/internal/domain"
	"filewise/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, frontendURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendBatchReviewEmail(ctx context.Context, toEmail string, batch *domain.BulkUploadBatch) error {
	reviewURL := BatchReviewURL(s.frontendURL, batch)
	subject := BatchReviewSubject(batch)
	htmlBody := buildBatchReviewHTML(batch, reviewURL)
	textBody := BatchReviewText(batch, reviewURL)

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

// BatchReviewURL is the review page for a batch.
func BatchReviewURL(frontendURL string, batch *domain.BulkUploadBatch) string {
	return fmt.Sprintf("%s/bulk-uploads/%s/review", frontendURL, batch.ID)
}

// BatchReviewSubject names the batch destination in the subject line.
func BatchReviewSubject(batch *domain.BulkUploadBatch) string {
	return fmt.Sprintf("Your %s upload is ready for review", destination(batch))
}

// BatchReviewText is the plain-text body of the review notification.
func BatchReviewText(batch *domain.BulkUploadBatch, reviewURL string) string {
	text := fmt.Sprintf("Your bulk upload to %s has finished processing.\n\n"+
		"%d of %d files are ready for review.\n", destination(batch), batch.ProcessedFiles, batch.TotalFiles)
	if batch.ErrorFiles > 0 {
		text += fmt.Sprintf("%d files could not be processed and can be retried.\n", batch.ErrorFiles)
	}
	return text + fmt.Sprintf("\nReview and file them here:\n%s\n\nFilewise", reviewURL)
}

func destination(batch *domain.BulkUploadBatch) string {
	switch {
	case batch.ProjectName != "":
		return batch.ProjectName
	case batch.ClientName != "":
		return batch.ClientName
	default:
		return string(batch.Scope)
	}
}

func buildBatchReviewHTML(batch *domain.BulkUploadBatch, reviewURL string) string {
	errorLine := ""
	if batch.ErrorFiles > 0 {
		errorLine = fmt.Sprintf(`<p style="color: #B91C1C;">%d files could not be processed and can be retried.</p>`, batch.ErrorFiles)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Your upload is ready for review</h2>
  <p>Your bulk upload to <strong>%s</strong> has finished processing.</p>
  <p>%d of %d files are ready for review.</p>
  %s
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Review Files</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Filewise - Document Filing</p>
</body>
</html>`, html.EscapeString(destination(batch)), batch.ProcessedFiles, batch.TotalFiles, errorLine, reviewURL, reviewURL)
}
