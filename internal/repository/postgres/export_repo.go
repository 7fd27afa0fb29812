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

type exportRepo struct {
	db *sqlx.DB
}

// NewExportRepo creates a new PostgreSQL-backed TrainingExportRepository.
func NewExportRepo(db *sqlx.DB) port.TrainingExportRepository {
	return &exportRepo{db: db}
}

func (r *exportRepo) Create(ctx context.Context, job *domain.TrainingExportJob) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO training_exports (
			id, export_name, exported_by, exported_at, criteria, stats,
			export_format, status, example_count, error, artifact_key,
			completed_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		job.ID, job.ExportName, job.ExportedBy, job.ExportedAt, job.Criteria, job.Stats,
		job.ExportFormat, job.Status, job.ExampleCount, job.Error, job.ArtifactKey,
		job.CompletedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("exportRepo.Create: %w", err)
	}
	return nil
}

func (r *exportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TrainingExportJob, error) {
	var job domain.TrainingExportJob
	err := r.db.GetContext(ctx, &job, "SELECT * FROM training_exports WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExportNotFound
		}
		return nil, fmt.Errorf("exportRepo.GetByID: %w", err)
	}
	return &job, nil
}

func (r *exportRepo) Update(ctx context.Context, job *domain.TrainingExportJob) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE training_exports SET
			stats = $1, status = $2, example_count = $3, error = $4,
			artifact_key = $5, completed_at = $6, updated_at = $7
		 WHERE id = $8`,
		job.Stats, job.Status, job.ExampleCount, job.Error,
		job.ArtifactKey, job.CompletedAt, job.UpdatedAt, job.ID)
	if err != nil {
		return fmt.Errorf("exportRepo.Update: %w", err)
	}
	return expectRow(result, domain.ErrExportNotFound)
}

func (r *exportRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.TrainingExportJob, error) {
	var jobs []domain.TrainingExportJob
	err := r.db.SelectContext(ctx, &jobs,
		`SELECT * FROM training_exports WHERE exported_by = $1 ORDER BY exported_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("exportRepo.ListByUser: %w", err)
	}
	return jobs, nil
}

func (r *exportRepo) ClaimStale(ctx context.Context, before time.Time, limit int) ([]domain.TrainingExportJob, error) {
	var jobs []domain.TrainingExportJob
	err := r.db.SelectContext(ctx, &jobs,
		`UPDATE training_exports SET status = 'pending', updated_at = NOW()
		 WHERE id IN (
			SELECT id FROM training_exports
			WHERE status IN ('pending', 'generating') AND updated_at < $1
			ORDER BY exported_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`, before, limit)
	if err != nil {
		return nil, fmt.Errorf("exportRepo.ClaimStale: %w", err)
	}
	return jobs, nil
}
