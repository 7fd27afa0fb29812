package noop

import (
	"context"

	"filewise/internal/domain"
	"filewise/internal/logger"
	"filewise/internal/port"
)

// Publisher logs progress events at debug level. It is used when no Redis
// address is configured.
type Publisher struct {
	log *logger.Logger
}

// NewPublisher creates a logging-only progress publisher.
func NewPublisher(log *logger.Logger) *Publisher {
	return &Publisher{log: log}
}

func (p *Publisher) Publish(_ context.Context, event port.BatchProgressEvent) error {
	p.log.Debug("noopProgress.Publish: batch progress",
		"type", event.Type, "batch_id", event.BatchID, "status", event.Status,
		"processed", event.ProcessedFiles, "errors", event.ErrorFiles, "total", event.TotalFiles)
	return nil
}

func (p *Publisher) Subscribe(context.Context) (<-chan port.BatchProgressEvent, error) {
	return nil, domain.ErrStreamUnavailable
}
