package noop

import (
	"context"
	"fmt"

	"filewise/internal/domain"
	"filewise/internal/logger"
	"filewise/internal/port"
)

type noopSender struct {
	frontendURL string
	log         *logger.Logger
}

// NewNoopSender creates a no-op EmailSender that logs review links instead of
// sending them.
func NewNoopSender(frontendURL string, log *logger.Logger) port.EmailSender {
	return &noopSender{frontendURL: frontendURL, log: log}
}

func (s *noopSender) SendBatchReviewEmail(_ context.Context, toEmail string, batch *domain.BulkUploadBatch) error {
	reviewURL := fmt.Sprintf("%s/bulk-uploads/%s/review", s.frontendURL, batch.ID)
	s.log.Info("noopSender.SendBatchReviewEmail: batch ready for review",
		"to", toEmail, "batch_id", batch.ID, "processed", batch.ProcessedFiles, "errors", batch.ErrorFiles, "url", reviewURL)
	return nil
}
