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

type batchRepo struct {
	db *sqlx.DB
}

// NewBatchRepo creates a new PostgreSQL-backed BatchRepository.
func NewBatchRepo(db *sqlx.DB) port.BatchRepository {
	return &batchRepo{db: db}
}

func (r *batchRepo) Create(ctx context.Context, b *domain.BulkUploadBatch) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bulk_upload_batches (
			id, scope, client_id, client_name, client_type, project_id,
			project_name, project_shortcode, is_internal, processing_mode,
			uploader_initials, instructions, checklist_items, folders,
			total_files, processed_files, error_files, status,
			created_by, notify_email, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, $21, $22
		)`,
		b.ID, b.Scope, b.ClientID, b.ClientName, b.ClientType, b.ProjectID,
		b.ProjectName, b.ProjectShortcode, b.IsInternal, b.ProcessingMode,
		b.UploaderInitials, b.Instructions, b.ChecklistItems, b.Folders,
		b.TotalFiles, b.ProcessedFiles, b.ErrorFiles, b.Status,
		b.CreatedBy, b.NotifyEmail, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("batchRepo.Create: %w", err)
	}
	return nil
}

func (r *batchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BulkUploadBatch, error) {
	var b domain.BulkUploadBatch
	err := r.db.GetContext(ctx, &b, "SELECT * FROM bulk_upload_batches WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("batchRepo.GetByID: %w", err)
	}
	return &b, nil
}

func (r *batchRepo) ListByCreator(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.BulkUploadBatch, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM bulk_upload_batches WHERE created_by = $1", userID)
	if err != nil {
		return nil, 0, fmt.Errorf("batchRepo.ListByCreator count: %w", err)
	}

	var batches []domain.BulkUploadBatch
	err = r.db.SelectContext(ctx, &batches,
		`SELECT * FROM bulk_upload_batches WHERE created_by = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("batchRepo.ListByCreator: %w", err)
	}
	return batches, total, nil
}

func (r *batchRepo) AddFiles(ctx context.Context, id uuid.UUID, n int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bulk_upload_batches SET total_files = total_files + $1, updated_at = NOW()
		 WHERE id = $2`, n, id)
	if err != nil {
		return fmt.Errorf("batchRepo.AddFiles: %w", err)
	}
	return expectRow(result, domain.ErrBatchNotFound)
}

// UpdateProgress writes the status and counters. Counters only move forward
// so a stale processor snapshot cannot roll them back; total_files is owned
// by AddFiles and read back into the batch.
func (r *batchRepo) UpdateProgress(ctx context.Context, b *domain.BulkUploadBatch) error {
	err := r.db.QueryRowxContext(ctx,
		`UPDATE bulk_upload_batches SET
			status = $1,
			processed_files = GREATEST(processed_files, $2),
			error_files = GREATEST(error_files, $3),
			updated_at = $4
		 WHERE id = $5
		 RETURNING total_files, processed_files, error_files`,
		b.Status, b.ProcessedFiles, b.ErrorFiles, b.UpdatedAt, b.ID,
	).Scan(&b.TotalFiles, &b.ProcessedFiles, &b.ErrorFiles)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrBatchNotFound
		}
		return fmt.Errorf("batchRepo.UpdateProgress: %w", err)
	}
	return nil
}
