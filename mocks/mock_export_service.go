package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"filewise/internal/domain"
	"filewise/internal/service"
)

// MockExportService is a mock implementation of service.TrainingExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) CreateExport(ctx context.Context, input *service.CreateExportInput) (*domain.TrainingExportJob, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrainingExportJob), args.Error(1)
}

func (m *MockExportService) Generate(ctx context.Context, jobID uuid.UUID) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *MockExportService) GetExport(ctx context.Context, jobID uuid.UUID) (*domain.ExportWithDownload, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportWithDownload), args.Error(1)
}

func (m *MockExportService) ListExports(ctx context.Context, userID uuid.UUID) ([]domain.TrainingExportJob, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrainingExportJob), args.Error(1)
}
