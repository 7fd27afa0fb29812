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

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

// CreateForItem files doc for a reviewed item. The item is claimed first, so
// a concurrent or repeated filing finds it no longer ready and no document is
// written.
func (r *documentRepo) CreateForItem(ctx context.Context, doc *domain.Document, itemID uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE bulk_upload_items SET status = $1, filed_document_id = $2, updated_at = NOW()
			 WHERE id = $3 AND status = $4`,
			domain.ItemStatusFiled, doc.ID, itemID, domain.ItemStatusReadyForReview)
		if err != nil {
			return fmt.Errorf("documentRepo.CreateForItem: claiming item: %w", err)
		}
		if err := expectRow(result, domain.ErrItemNotReady); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO documents (
				id, client_id, project_id, document_code, base_pattern, version,
				original_file_name, file_name_normalized, file_type, category,
				target_folder, is_internal, storage_key, content_hash,
				source_item_id, created_by, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6,
				$7, $8, $9, $10,
				$11, $12, $13, $14,
				$15, $16, $17
			)`,
			doc.ID, doc.ClientID, doc.ProjectID, doc.DocumentCode, doc.BasePattern, doc.Version,
			doc.OriginalFileName, doc.FileNameNormalized, doc.FileType, doc.Category,
			doc.TargetFolder, doc.IsInternal, doc.StorageKey, doc.ContentHash,
			doc.SourceItemID, doc.CreatedBy, doc.CreatedAt)
		if err != nil {
			return fmt.Errorf("documentRepo.CreateForItem: %w", err)
		}
		return nil
	})
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListVersionsByBasePattern(ctx context.Context, clientID *uuid.UUID, basePattern string) ([]string, error) {
	var versions []string
	err := r.db.SelectContext(ctx, &versions,
		`SELECT version FROM documents
		 WHERE client_id IS NOT DISTINCT FROM $1 AND base_pattern = $2`,
		clientID, basePattern)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListVersionsByBasePattern: %w", err)
	}
	return versions, nil
}
