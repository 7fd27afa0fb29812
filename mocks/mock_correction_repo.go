package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"filewise/internal/domain"
)

// MockCorrectionRepo is a mock implementation of port.CorrectionRepository.
type MockCorrectionRepo struct {
	mock.Mock
}

func (m *MockCorrectionRepo) Create(ctx context.Context, c *domain.FilingCorrection) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCorrectionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FilingCorrection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FilingCorrection), args.Error(1)
}

func (m *MockCorrectionRepo) ListByPredictedFileType(ctx context.Context, fileType string, limit int) ([]domain.FilingCorrection, error) {
	args := m.Called(ctx, fileType, limit)
	return corrections(args)
}

func (m *MockCorrectionRepo) ListByPredictedCategory(ctx context.Context, category string, limit int) ([]domain.FilingCorrection, error) {
	args := m.Called(ctx, category, limit)
	return corrections(args)
}

func (m *MockCorrectionRepo) SearchByFileName(ctx context.Context, normalized string, limit int) ([]domain.FilingCorrection, error) {
	args := m.Called(ctx, normalized, limit)
	return corrections(args)
}

func (m *MockCorrectionRepo) ListByConfusion(ctx context.Context, field domain.CorrectableField, from, to string, limit int) ([]domain.FilingCorrection, error) {
	args := m.Called(ctx, field, from, to, limit)
	return corrections(args)
}

func (m *MockCorrectionRepo) ListSince(ctx context.Context, since *time.Time) ([]domain.FilingCorrection, error) {
	args := m.Called(ctx, since)
	return corrections(args)
}

func corrections(args mock.Arguments) ([]domain.FilingCorrection, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FilingCorrection), args.Error(1)
}
