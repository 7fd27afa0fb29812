package port

import (
	"context"

	"filewise/internal/domain"
)

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendBatchReviewEmail(ctx context.Context, toEmail string, batch *domain.BulkUploadBatch) error
}
