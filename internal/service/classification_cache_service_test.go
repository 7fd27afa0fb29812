package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"filewise/internal/domain"
	"filewise/internal/logger"
	"filewise/internal/service"
	"filewise/mocks"
)

func appraisal(confidence float64) domain.Classification {
	return domain.Classification{
		FileType:     "Appraisal",
		Category:     "Valuation",
		TargetFolder: "Appraisals",
		Confidence:   confidence,
	}
}

func TestClassificationCache_StoreThenCheckHits(t *testing.T) {
	repo := new(mocks.MockCacheRepo)
	svc := service.NewClassificationCacheService(repo, logger.Nop())

	var stored *domain.ClassificationCacheEntry
	repo.On("FindValidByHash", mock.Anything, "0002b606").Return(nil, domain.ErrCacheEntryNotFound).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ClassificationCacheEntry")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.ClassificationCacheEntry) }).
		Return(nil)

	entry, err := svc.Store(context.Background(), &service.StoreCacheInput{
		ContentHash:     "0002b606",
		FileNamePattern: "park appraisal",
		Classification:  appraisal(0.9),
		ClientType:      "fund",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), entry.HitCount)
	assert.True(t, entry.IsValid)

	repo.On("FindValidByHash", mock.Anything, "0002b606").Return(stored, nil).Once()

	res, err := svc.Check(context.Background(), "0002b606")
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.Equal(t, appraisal(0.9), *res.Classification)
	assert.Equal(t, entry.ID, *res.CacheID)
}

func TestClassificationCache_CheckAfterInvalidateMisses(t *testing.T) {
	repo := new(mocks.MockCacheRepo)
	svc := service.NewClassificationCacheService(repo, logger.Nop())

	repo.On("InvalidateByHash", mock.Anything, "abc", mock.AnythingOfType("time.Time")).Return(int64(2), nil)
	repo.On("FindValidByHash", mock.Anything, "abc").Return(nil, domain.ErrCacheEntryNotFound)

	n, err := svc.InvalidateByHash(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	res, err := svc.Check(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.Nil(t, res.Classification)
}

func TestClassificationCache_StoreMergesIntoValidEntry(t *testing.T) {
	repo := new(mocks.MockCacheRepo)
	svc := service.NewClassificationCacheService(repo, logger.Nop())

	stale := time.Now().Add(-time.Hour)
	existing := &domain.ClassificationCacheEntry{
		ID:             uuid.New(),
		ContentHash:    "abc",
		Classification: appraisal(0.4),
		HitCount:       7,
		IsValid:        true,
		InvalidatedAt:  &stale,
		ClientType:     "fund",
	}
	repo.On("FindValidByHash", mock.Anything, "abc").Return(existing, nil)
	repo.On("UpdateClassification", mock.Anything, existing).Return(nil)

	entry, err := svc.Store(context.Background(), &service.StoreCacheInput{
		ContentHash:    "abc",
		Classification: appraisal(0.95),
	})

	require.NoError(t, err)
	assert.Equal(t, existing.ID, entry.ID)
	assert.Equal(t, int64(7), entry.HitCount)
	assert.Equal(t, 0.95, entry.Classification.Confidence)
	assert.Nil(t, entry.InvalidatedAt)
	assert.Equal(t, "fund", entry.ClientType)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestClassificationCache_Check_RepoError(t *testing.T) {
	repo := new(mocks.MockCacheRepo)
	svc := service.NewClassificationCacheService(repo, logger.Nop())

	repo.On("FindValidByHash", mock.Anything, "abc").Return(nil, errors.New("connection reset"))

	_, err := svc.Check(context.Background(), "abc")
	assert.Error(t, err)
}

func TestClassificationCache_RecordHit_UnknownID(t *testing.T) {
	repo := new(mocks.MockCacheRepo)
	svc := service.NewClassificationCacheService(repo, logger.Nop())

	id := uuid.New()
	repo.On("IncrementHit", mock.Anything, id, mock.AnythingOfType("time.Time")).Return(domain.ErrCacheEntryNotFound)

	err := svc.RecordHit(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrCacheEntryNotFound)
}

func TestClassificationCache_InvalidateByPattern_RequiresCriterion(t *testing.T) {
	repo := new(mocks.MockCacheRepo)
	svc := service.NewClassificationCacheService(repo, logger.Nop())

	_, err := svc.InvalidateByPattern(context.Background(), domain.CacheInvalidationFilter{Pattern: "  ", ClientType: "fund"})
	assert.ErrorIs(t, err, domain.ErrInvalidCacheFilter)
	repo.AssertNotCalled(t, "InvalidateMatching", mock.Anything, mock.Anything, mock.Anything)
}

func TestClassificationCache_InvalidateByPattern_OlderThan(t *testing.T) {
	repo := new(mocks.MockCacheRepo)
	svc := service.NewClassificationCacheService(repo, logger.Nop())

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	filter := domain.CacheInvalidationFilter{OlderThan: &cutoff}
	repo.On("InvalidateMatching", mock.Anything, filter, mock.AnythingOfType("time.Time")).Return(int64(12), nil)

	n, err := svc.InvalidateByPattern(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}
