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

type cacheRepo struct {
	db *sqlx.DB
}

// NewCacheRepo creates a new PostgreSQL-backed ClassificationCacheRepository.
func NewCacheRepo(db *sqlx.DB) port.ClassificationCacheRepository {
	return &cacheRepo{db: db}
}

func (r *cacheRepo) FindValidByHash(ctx context.Context, hash string) (*domain.ClassificationCacheEntry, error) {
	var entry domain.ClassificationCacheEntry
	err := r.db.GetContext(ctx, &entry,
		`SELECT * FROM classification_cache
		 WHERE content_hash = $1 AND is_valid
		 ORDER BY created_at DESC LIMIT 1`, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCacheEntryNotFound
		}
		return nil, fmt.Errorf("cacheRepo.FindValidByHash: %w", err)
	}
	return &entry, nil
}

func (r *cacheRepo) Create(ctx context.Context, entry *domain.ClassificationCacheEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO classification_cache (
			id, content_hash, file_name_pattern, classification, hit_count,
			last_hit_at, correction_count, is_valid, invalidated_at, client_type,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.ID, entry.ContentHash, entry.FileNamePattern, entry.Classification, entry.HitCount,
		entry.LastHitAt, entry.CorrectionCount, entry.IsValid, entry.InvalidatedAt, entry.ClientType,
		entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("cacheRepo.Create: %w", err)
	}
	return nil
}

func (r *cacheRepo) UpdateClassification(ctx context.Context, entry *domain.ClassificationCacheEntry) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE classification_cache SET
			classification = $1, file_name_pattern = $2, client_type = $3,
			is_valid = TRUE, invalidated_at = NULL, updated_at = $4
		 WHERE id = $5`,
		entry.Classification, entry.FileNamePattern, entry.ClientType, entry.UpdatedAt, entry.ID)
	if err != nil {
		return fmt.Errorf("cacheRepo.UpdateClassification: %w", err)
	}
	return expectRow(result, domain.ErrCacheEntryNotFound)
}

func (r *cacheRepo) IncrementHit(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE classification_cache SET hit_count = hit_count + 1, last_hit_at = $1
		 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("cacheRepo.IncrementHit: %w", err)
	}
	return expectRow(result, domain.ErrCacheEntryNotFound)
}

func (r *cacheRepo) InvalidateByHash(ctx context.Context, hash string, at time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE classification_cache SET
			is_valid = FALSE, invalidated_at = $1, correction_count = correction_count + 1, updated_at = $1
		 WHERE content_hash = $2`, at, hash)
	if err != nil {
		return 0, fmt.Errorf("cacheRepo.InvalidateByHash: %w", err)
	}
	return result.RowsAffected()
}

// InvalidateMatching flips every valid entry whose pattern contains
// filter.Pattern, or that has gone unused since filter.OlderThan.
func (r *cacheRepo) InvalidateMatching(ctx context.Context, filter domain.CacheInvalidationFilter, at time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE classification_cache SET is_valid = FALSE, invalidated_at = $1, updated_at = $1
		 WHERE is_valid
		   AND (
		       ($2 <> '' AND file_name_pattern ILIKE '%' || $2 || '%')
		    OR ($3::timestamptz IS NOT NULL AND COALESCE(last_hit_at, created_at) < $3)
		   )
		   AND ($4 = '' OR client_type = $4)`,
		at, escapeLike(filter.Pattern), filter.OlderThan, filter.ClientType)
	if err != nil {
		return 0, fmt.Errorf("cacheRepo.InvalidateMatching: %w", err)
	}
	return result.RowsAffected()
}

func (r *cacheRepo) Stats(ctx context.Context) (*domain.CacheStats, error) {
	var stats domain.CacheStats
	err := r.db.GetContext(ctx, &stats,
		`SELECT
			COUNT(*) FILTER (WHERE is_valid) AS valid_entries,
			COUNT(*) FILTER (WHERE NOT is_valid) AS invalid_entries,
			COALESCE(SUM(hit_count), 0) AS total_hits
		 FROM classification_cache`)
	if err != nil {
		return nil, fmt.Errorf("cacheRepo.Stats: %w", err)
	}
	return &stats, nil
}
