package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"filewise/internal/domain"
)

// MockCacheRepo is a mock implementation of port.ClassificationCacheRepository.
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) FindValidByHash(ctx context.Context, hash string) (*domain.ClassificationCacheEntry, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClassificationCacheEntry), args.Error(1)
}

func (m *MockCacheRepo) Create(ctx context.Context, entry *domain.ClassificationCacheEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCacheRepo) UpdateClassification(ctx context.Context, entry *domain.ClassificationCacheEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCacheRepo) IncrementHit(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockCacheRepo) InvalidateByHash(ctx context.Context, hash string, at time.Time) (int64, error) {
	args := m.Called(ctx, hash, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) InvalidateMatching(ctx context.Context, filter domain.CacheInvalidationFilter, at time.Time) (int64, error) {
	args := m.Called(ctx, filter, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) Stats(ctx context.Context) (*domain.CacheStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CacheStats), args.Error(1)
}
