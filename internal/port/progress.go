package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"filewise/internal/domain"
)

// Batch progress event types.
const (
	EventBatchProgress  = "batch.progress"
	EventItemFailed     = "item.failed"
	EventBatchCompleted = "batch.completed"
)

// BatchProgressEvent is published after every state change of a running batch.
type BatchProgressEvent struct {
	Type           string             `json:"type"`
	BatchID        uuid.UUID          `json:"batch_id"`
	ItemID         *uuid.UUID         `json:"item_id,omitempty"`
	Status         domain.BatchStatus `json:"status"`
	TotalFiles     int                `json:"total_files"`
	ProcessedFiles int                `json:"processed_files"`
	ErrorFiles     int                `json:"error_files"`
	Message        string             `json:"message,omitempty"`
	At             time.Time          `json:"at"`
}

// ProgressPublisher fans batch progress out to observers.
type ProgressPublisher interface {
	Publish(ctx context.Context, event BatchProgressEvent) error
}

// ProgressSubscriber streams published events to a single observer. The
// returned channel closes when ctx is done.
type ProgressSubscriber interface {
	Subscribe(ctx context.Context) (<-chan BatchProgressEvent, error)
}
