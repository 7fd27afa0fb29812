package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"filewise/internal/domain"
)

// MockBatchRepo is a mock implementation of port.BatchRepository.
type MockBatchRepo struct {
	mock.Mock
}

func (m *MockBatchRepo) Create(ctx context.Context, batch *domain.BulkUploadBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BulkUploadBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkUploadBatch), args.Error(1)
}

func (m *MockBatchRepo) ListByCreator(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.BulkUploadBatch, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.BulkUploadBatch), args.Int(1), args.Error(2)
}

func (m *MockBatchRepo) AddFiles(ctx context.Context, id uuid.UUID, n int) error {
	args := m.Called(ctx, id, n)
	return args.Error(0)
}

func (m *MockBatchRepo) UpdateProgress(ctx context.Context, batch *domain.BulkUploadBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}
