package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"filewise/internal/domain"
	"filewise/internal/port"
)

type itemRepo struct {
	db *sqlx.DB
}

// NewItemRepo creates a new PostgreSQL-backed ItemRepository.
func NewItemRepo(db *sqlx.DB) port.ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, it *domain.BulkUploadItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bulk_upload_items (
			id, batch_id, status, original_file_name, content_type, file_size,
			storage_key, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		it.ID, it.BatchID, it.Status, it.OriginalFileName, it.ContentType, it.FileSize,
		it.StorageKey, it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("itemRepo.Create: %w", err)
	}
	return nil
}

func (r *itemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BulkUploadItem, error) {
	var it domain.BulkUploadItem
	err := r.db.GetContext(ctx, &it, "SELECT * FROM bulk_upload_items WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("itemRepo.GetByID: %w", err)
	}
	return &it, nil
}

func (r *itemRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.BulkUploadItem, error) {
	var items []domain.BulkUploadItem
	err := r.db.SelectContext(ctx, &items,
		`SELECT * FROM bulk_upload_items WHERE batch_id = $1 ORDER BY created_at, id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("itemRepo.ListByBatch: %w", err)
	}
	return items, nil
}

func (r *itemRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ItemStatus, errMsg string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bulk_upload_items SET status = $1, error_message = $2, updated_at = NOW()
		 WHERE id = $3`, status, errMsg, id)
	if err != nil {
		return fmt.Errorf("itemRepo.UpdateStatus: %w", err)
	}
	return expectRow(result, domain.ErrItemNotFound)
}

func (r *itemRepo) SaveAnalysis(ctx context.Context, it *domain.BulkUploadItem) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bulk_upload_items SET
			status = $1, storage_key = $2, content_hash = $3, summary = $4,
			classification = $5, classification_reasoning = $6, checklist_matches = $7,
			intelligence_fields = $8, generated_document_code = $9, version = $10,
			is_duplicate = $11, duplicate_of_document_id = $12, from_cache = $13,
			error_message = '', updated_at = NOW()
		 WHERE id = $14`,
		domain.ItemStatusReadyForReview, it.StorageKey, it.ContentHash, it.Summary,
		it.Classification, it.ClassificationReasoning, it.ChecklistMatches,
		it.IntelligenceFields, it.GeneratedDocumentCode, it.Version,
		it.IsDuplicate, it.DuplicateOfDocumentID, it.FromCache,
		it.ID)
	if err != nil {
		return fmt.Errorf("itemRepo.SaveAnalysis: %w", err)
	}
	return expectRow(result, domain.ErrItemNotFound)
}
