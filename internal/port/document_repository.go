package port

import (
	"context"

	"github.com/google/uuid"

	"filewise/internal/domain"
)

// DocumentRepository defines the contract for filed document persistence.
type DocumentRepository interface {
	// CreateForItem atomically moves a ready_for_review item to filed and
	// inserts its document. ErrItemNotReady means nothing was written.
	CreateForItem(ctx context.Context, doc *domain.Document, itemID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	// ListVersionsByBasePattern returns the versions of every document in the
	// family identified by basePattern for a client.
	ListVersionsByBasePattern(ctx context.Context, clientID *uuid.UUID, basePattern string) ([]string, error)
}
