package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"filewise/internal/domain"
	"filewise/internal/logger"
	"filewise/internal/port"
)

// CacheCheckResult is the outcome of a cache lookup. Classification, HitCount
// and CacheID are only set on a hit.
type CacheCheckResult struct {
	Hit            bool                   `json:"hit"`
	Classification *domain.Classification `json:"classification,omitempty"`
	HitCount       int64                  `json:"hit_count,omitempty"`
	CacheID        *uuid.UUID             `json:"cache_id,omitempty"`
}

// StoreCacheInput is the DTO for storing a classification.
type StoreCacheInput struct {
	ContentHash     string
	FileNamePattern string
	Classification  domain.Classification
	ClientType      string
}

// ClassificationCacheService defines the classification cache contract.
type ClassificationCacheService interface {
	Check(ctx context.Context, hash string) (*CacheCheckResult, error)
	RecordHit(ctx context.Context, cacheID uuid.UUID) error
	Store(ctx context.Context, input *StoreCacheInput) (*domain.ClassificationCacheEntry, error)
	InvalidateByHash(ctx context.Context, hash string) (int64, error)
	InvalidateByPattern(ctx context.Context, filter domain.CacheInvalidationFilter) (int64, error)
	Stats(ctx context.Context) (*domain.CacheStats, error)
}

type classificationCacheService struct {
	repo port.ClassificationCacheRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewClassificationCacheService creates a new ClassificationCacheService implementation.
func NewClassificationCacheService(repo port.ClassificationCacheRepository, log *logger.Logger) ClassificationCacheService {
	return &classificationCacheService{
		repo: repo,
		log:  log.With("component", "classificationCacheService"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *classificationCacheService) Check(ctx context.Context, hash string) (*CacheCheckResult, error) {
	entry, err := s.repo.FindValidByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrCacheEntryNotFound) {
			return &CacheCheckResult{Hit: false}, nil
		}
		return nil, fmt.Errorf("checking cache for %s: %w", hash, err)
	}

	cls := entry.Classification
	id := entry.ID
	return &CacheCheckResult{
		Hit:            true,
		Classification: &cls,
		HitCount:       entry.HitCount,
		CacheID:        &id,
	}, nil
}

func (s *classificationCacheService) RecordHit(ctx context.Context, cacheID uuid.UUID) error {
	if err := s.repo.IncrementHit(ctx, cacheID, s.now()); err != nil {
		return fmt.Errorf("recording hit on %s: %w", cacheID, err)
	}
	return nil
}

// Store overwrites the valid entry for the hash in place, resurrecting it if
// it carried a stale invalidation marker, or inserts a fresh entry.
func (s *classificationCacheService) Store(ctx context.Context, input *StoreCacheInput) (*domain.ClassificationCacheEntry, error) {
	now := s.now()

	existing, err := s.repo.FindValidByHash(ctx, input.ContentHash)
	switch {
	case err == nil:
		existing.Classification = input.Classification
		existing.FileNamePattern = input.FileNamePattern
		if input.ClientType != "" {
			existing.ClientType = input.ClientType
		}
		existing.IsValid = true
		existing.InvalidatedAt = nil
		existing.UpdatedAt = now
		if err := s.repo.UpdateClassification(ctx, existing); err != nil {
			return nil, fmt.Errorf("updating cache entry %s: %w", existing.ID, err)
		}
		s.log.Debug("classificationCacheService.Store: merged into existing entry",
			"hash", input.ContentHash, "cache_id", existing.ID)
		return existing, nil
	case !errors.Is(err, domain.ErrCacheEntryNotFound):
		return nil, fmt.Errorf("looking up cache entry for %s: %w", input.ContentHash, err)
	}

	entry := &domain.ClassificationCacheEntry{
		ID:              uuid.New(),
		ContentHash:     input.ContentHash,
		FileNamePattern: input.FileNamePattern,
		Classification:  input.Classification,
		HitCount:        0,
		IsValid:         true,
		ClientType:      input.ClientType,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("creating cache entry for %s: %w", input.ContentHash, err)
	}
	return entry, nil
}

func (s *classificationCacheService) InvalidateByHash(ctx context.Context, hash string) (int64, error) {
	n, err := s.repo.InvalidateByHash(ctx, hash, s.now())
	if err != nil {
		return 0, fmt.Errorf("invalidating cache for %s: %w", hash, err)
	}
	if n > 0 {
		s.log.Info("classificationCacheService.InvalidateByHash: invalidated entries", "hash", hash, "count", n)
	}
	return n, nil
}

func (s *classificationCacheService) InvalidateByPattern(ctx context.Context, filter domain.CacheInvalidationFilter) (int64, error) {
	filter.Pattern = strings.TrimSpace(filter.Pattern)
	if filter.Pattern == "" && filter.OlderThan == nil {
		return 0, domain.ErrInvalidCacheFilter
	}

	n, err := s.repo.InvalidateMatching(ctx, filter, s.now())
	if err != nil {
		return 0, fmt.Errorf("sweeping cache: %w", err)
	}
	s.log.Info("classificationCacheService.InvalidateByPattern: sweep finished",
		"pattern", filter.Pattern, "client_type", filter.ClientType, "older_than", filter.OlderThan, "count", n)
	return n, nil
}

func (s *classificationCacheService) Stats(ctx context.Context) (*domain.CacheStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading cache stats: %w", err)
	}
	return stats, nil
}
