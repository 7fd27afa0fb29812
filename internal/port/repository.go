package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"filewise/internal/domain"
)

// ClassificationCacheRepository defines the contract for classification cache
// persistence. Entries are never deleted, only invalidated.
type ClassificationCacheRepository interface {
	// FindValidByHash returns the newest valid entry for hash or
	// domain.ErrCacheEntryNotFound.
	FindValidByHash(ctx context.Context, hash string) (*domain.ClassificationCacheEntry, error)
	Create(ctx context.Context, entry *domain.ClassificationCacheEntry) error
	// UpdateClassification overwrites an entry's classification in place and
	// clears any invalidation marker.
	UpdateClassification(ctx context.Context, entry *domain.ClassificationCacheEntry) error
	IncrementHit(ctx context.Context, id uuid.UUID, at time.Time) error
	// InvalidateByHash marks every entry for hash invalid, already invalid
	// ones included, and counts one more correction on each.
	InvalidateByHash(ctx context.Context, hash string, at time.Time) (int64, error)
	InvalidateMatching(ctx context.Context, filter domain.CacheInvalidationFilter, at time.Time) (int64, error)
	Stats(ctx context.Context) (*domain.CacheStats, error)
}

// CorrectionRepository defines the contract for the append-only correction
// store. List methods return newest first.
type CorrectionRepository interface {
	Create(ctx context.Context, c *domain.FilingCorrection) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FilingCorrection, error)
	ListByPredictedFileType(ctx context.Context, fileType string, limit int) ([]domain.FilingCorrection, error)
	ListByPredictedCategory(ctx context.Context, category string, limit int) ([]domain.FilingCorrection, error)
	// SearchByFileName runs a full-text search over normalized file names.
	SearchByFileName(ctx context.Context, normalized string, limit int) ([]domain.FilingCorrection, error)
	// ListByConfusion returns corrections where the AI predicted from for
	// field and the user corrected it to to.
	ListByConfusion(ctx context.Context, field domain.CorrectableField, from, to string, limit int) ([]domain.FilingCorrection, error)
	// ListSince returns every correction created at or after since; nil means all.
	ListSince(ctx context.Context, since *time.Time) ([]domain.FilingCorrection, error)
}

// TrainingExportRepository defines the contract for export job persistence.
type TrainingExportRepository interface {
	Create(ctx context.Context, job *domain.TrainingExportJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TrainingExportJob, error)
	Update(ctx context.Context, job *domain.TrainingExportJob) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.TrainingExportJob, error)
	// ClaimStale resets pending or generating jobs untouched since before to
	// pending and returns up to limit of them.
	ClaimStale(ctx context.Context, before time.Time, limit int) ([]domain.TrainingExportJob, error)
}

// BatchRepository defines the contract for bulk upload batch persistence.
type BatchRepository interface {
	Create(ctx context.Context, batch *domain.BulkUploadBatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BulkUploadBatch, error)
	ListByCreator(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.BulkUploadBatch, int, error)
	AddFiles(ctx context.Context, id uuid.UUID, n int) error
	// UpdateProgress writes status and counters. Counters never decrease.
	UpdateProgress(ctx context.Context, batch *domain.BulkUploadBatch) error
}

// ItemRepository defines the contract for bulk upload item persistence.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.BulkUploadItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BulkUploadItem, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.BulkUploadItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ItemStatus, errMsg string) error
	// SaveAnalysis persists the processing result and moves the item to
	// ready_for_review.
	SaveAnalysis(ctx context.Context, item *domain.BulkUploadItem) error
}
