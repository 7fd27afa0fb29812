package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"filewise/internal/domain"
)

// MockItemRepo is a mock implementation of port.ItemRepository.
type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, item *domain.BulkUploadItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BulkUploadItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkUploadItem), args.Error(1)
}

func (m *MockItemRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.BulkUploadItem, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BulkUploadItem), args.Error(1)
}

func (m *MockItemRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ItemStatus, errMsg string) error {
	args := m.Called(ctx, id, status, errMsg)
	return args.Error(0)
}

func (m *MockItemRepo) SaveAnalysis(ctx context.Context, item *domain.BulkUploadItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
