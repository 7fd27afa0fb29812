package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"filewise/internal/domain"
	"filewise/internal/port"
)

// confusionColumns maps a correctable field to its JSON key in both the
// ai_prediction and user_correction documents. Only text fields can express
// a confusion.
var confusionColumns = map[domain.CorrectableField]string{
	domain.FieldFileType:     "file_type",
	domain.FieldCategory:     "category",
	domain.FieldTargetFolder: "target_folder",
}

type correctionRepo struct {
	db *sqlx.DB
}

// NewCorrectionRepo creates a new PostgreSQL-backed CorrectionRepository.
func NewCorrectionRepo(db *sqlx.DB) port.CorrectionRepository {
	return &correctionRepo{db: db}
}

func (r *correctionRepo) Create(ctx context.Context, c *domain.FilingCorrection) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO filing_corrections (
			id, source_item_id, file_name, file_name_normalized, content_hash,
			content_summary, client_type, ai_prediction, user_correction,
			corrected_fields, correction_weight, corrected_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.SourceItemID, c.FileName, c.FileNameNormalized, c.ContentHash,
		c.ContentSummary, c.ClientType, c.AIPrediction, c.UserCorrection,
		c.CorrectedFields, c.CorrectionWeight, c.CorrectedBy, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("correctionRepo.Create: %w", err)
	}
	return nil
}

func (r *correctionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FilingCorrection, error) {
	var c domain.FilingCorrection
	err := r.db.GetContext(ctx, &c, "SELECT * FROM filing_corrections WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCorrectionNotFound
		}
		return nil, fmt.Errorf("correctionRepo.GetByID: %w", err)
	}
	return &c, nil
}

func (r *correctionRepo) ListByPredictedFileType(ctx context.Context, fileType string, limit int) ([]domain.FilingCorrection, error) {
	var list []domain.FilingCorrection
	err := r.db.SelectContext(ctx, &list,
		`SELECT * FROM filing_corrections
		 WHERE ai_prediction->>'file_type' = $1
		 ORDER BY created_at DESC LIMIT $2`, fileType, limit)
	if err != nil {
		return nil, fmt.Errorf("correctionRepo.ListByPredictedFileType: %w", err)
	}
	return list, nil
}

func (r *correctionRepo) ListByPredictedCategory(ctx context.Context, category string, limit int) ([]domain.FilingCorrection, error) {
	var list []domain.FilingCorrection
	err := r.db.SelectContext(ctx, &list,
		`SELECT * FROM filing_corrections
		 WHERE ai_prediction->>'category' = $1
		 ORDER BY created_at DESC LIMIT $2`, category, limit)
	if err != nil {
		return nil, fmt.Errorf("correctionRepo.ListByPredictedCategory: %w", err)
	}
	return list, nil
}

// SearchByFileName ranks corrections by full-text similarity of their
// normalized file names. Failures are reported as domain.ErrSearchUnavailable.
func (r *correctionRepo) SearchByFileName(ctx context.Context, normalized string, limit int) ([]domain.FilingCorrection, error) {
	var list []domain.FilingCorrection
	err := r.db.SelectContext(ctx, &list,
		`SELECT c.* FROM filing_corrections c,
		        plainto_tsquery('simple', $1) q
		 WHERE to_tsvector('simple', c.file_name_normalized) @@ q
		 ORDER BY ts_rank(to_tsvector('simple', c.file_name_normalized), q) DESC, c.created_at DESC
		 LIMIT $2`, normalized, limit)
	if err != nil {
		return nil, fmt.Errorf("correctionRepo.SearchByFileName: %w: %v", domain.ErrSearchUnavailable, err)
	}
	return list, nil
}

func (r *correctionRepo) ListByConfusion(ctx context.Context, field domain.CorrectableField, from, to string, limit int) ([]domain.FilingCorrection, error) {
	key, ok := confusionColumns[field]
	if !ok {
		return nil, nil
	}
	var list []domain.FilingCorrection
	err := r.db.SelectContext(ctx, &list,
		`SELECT * FROM filing_corrections
		 WHERE ai_prediction->>$1 = $2 AND user_correction->>$1 = $3
		 ORDER BY created_at DESC LIMIT $4`, key, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("correctionRepo.ListByConfusion: %w", err)
	}
	return list, nil
}

func (r *correctionRepo) ListSince(ctx context.Context, since *time.Time) ([]domain.FilingCorrection, error) {
	var list []domain.FilingCorrection
	err := r.db.SelectContext(ctx, &list,
		`SELECT * FROM filing_corrections
		 WHERE $1::timestamptz IS NULL OR created_at >= $1
		 ORDER BY created_at DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("correctionRepo.ListSince: %w", err)
	}
	return list, nil
}
