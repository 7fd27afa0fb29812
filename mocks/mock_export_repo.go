package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"filewise/internal/domain"
)

// MockExportRepo is a mock implementation of port.TrainingExportRepository.
type MockExportRepo struct {
	mock.Mock
}

func (m *MockExportRepo) Create(ctx context.Context, job *domain.TrainingExportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockExportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TrainingExportJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrainingExportJob), args.Error(1)
}

func (m *MockExportRepo) Update(ctx context.Context, job *domain.TrainingExportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockExportRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.TrainingExportJob, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrainingExportJob), args.Error(1)
}

func (m *MockExportRepo) ClaimStale(ctx context.Context, before time.Time, limit int) ([]domain.TrainingExportJob, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrainingExportJob), args.Error(1)
}
