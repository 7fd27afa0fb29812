package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"filewise/internal/domain"
	"filewise/internal/service"
)

// MockBulkUploadService is a mock implementation of service.BulkUploadService.
type MockBulkUploadService struct {
	mock.Mock
}

func (m *MockBulkUploadService) CreateBatch(ctx context.Context, input *service.CreateBatchInput) (*domain.BulkUploadBatch, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkUploadBatch), args.Error(1)
}

func (m *MockBulkUploadService) EnqueueFiles(ctx context.Context, batchID uuid.UUID, files []service.QueuedFile) ([]domain.BulkUploadItem, error) {
	args := m.Called(ctx, batchID, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BulkUploadItem), args.Error(1)
}

func (m *MockBulkUploadService) AbortBatch(ctx context.Context, batchID uuid.UUID) error {
	args := m.Called(ctx, batchID)
	return args.Error(0)
}

func (m *MockBulkUploadService) ResumeBatch(ctx context.Context, batchID uuid.UUID) ([]domain.BulkUploadItem, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BulkUploadItem), args.Error(1)
}

func (m *MockBulkUploadService) RetryItem(ctx context.Context, itemID uuid.UUID) (*domain.BulkUploadItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkUploadItem), args.Error(1)
}

func (m *MockBulkUploadService) GetBatch(ctx context.Context, batchID uuid.UUID) (*domain.BulkUploadBatch, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkUploadBatch), args.Error(1)
}

func (m *MockBulkUploadService) ListBatches(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.BulkUploadBatch, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.BulkUploadBatch), args.Int(1), args.Error(2)
}

func (m *MockBulkUploadService) ListItems(ctx context.Context, batchID uuid.UUID) ([]domain.BulkUploadItem, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BulkUploadItem), args.Error(1)
}

func (m *MockBulkUploadService) GetItem(ctx context.Context, itemID uuid.UUID) (*domain.BulkUploadItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkUploadItem), args.Error(1)
}

func (m *MockBulkUploadService) FileItem(ctx context.Context, input *service.FileItemInput) (*domain.Document, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockBulkUploadService) Shutdown() {
	m.Called()
}
