package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"filewise/internal/domain"
	"filewise/internal/service"
)

// MockCacheService is a mock implementation of service.ClassificationCacheService.
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Check(ctx context.Context, hash string) (*service.CacheCheckResult, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CacheCheckResult), args.Error(1)
}

func (m *MockCacheService) RecordHit(ctx context.Context, cacheID uuid.UUID) error {
	args := m.Called(ctx, cacheID)
	return args.Error(0)
}

func (m *MockCacheService) Store(ctx context.Context, input *service.StoreCacheInput) (*domain.ClassificationCacheEntry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClassificationCacheEntry), args.Error(1)
}

func (m *MockCacheService) InvalidateByHash(ctx context.Context, hash string) (int64, error) {
	args := m.Called(ctx, hash)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheService) InvalidateByPattern(ctx context.Context, filter domain.CacheInvalidationFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheService) Stats(ctx context.Context) (*domain.CacheStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CacheStats), args.Error(1)
}
