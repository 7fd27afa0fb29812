package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"filewise/internal/domain"
	"filewise/internal/service"
)

// MockCorrectionService is a mock implementation of service.CorrectionService.
type MockCorrectionService struct {
	mock.Mock
}

func (m *MockCorrectionService) Capture(ctx context.Context, input *service.CaptureCorrectionInput) (*domain.FilingCorrection, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FilingCorrection), args.Error(1)
}

func (m *MockCorrectionService) GetCorrection(ctx context.Context, id uuid.UUID) (*domain.FilingCorrection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FilingCorrection), args.Error(1)
}

func (m *MockCorrectionService) GetRelevantCorrections(ctx context.Context, q service.RelevantCorrectionsQuery) ([]domain.ScoredCorrection, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredCorrection), args.Error(1)
}

func (m *MockCorrectionService) GetTargetedCorrections(ctx context.Context, q service.TargetedCorrectionsQuery) ([]domain.TargetedCorrection, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TargetedCorrection), args.Error(1)
}

func (m *MockCorrectionService) GetConsolidatedRules(ctx context.Context, q service.RuleQuery) ([]domain.ConsolidatedRule, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConsolidatedRule), args.Error(1)
}

func (m *MockCorrectionService) GetCorrectionStats(ctx context.Context, since *time.Time) (*domain.CorrectionStats, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CorrectionStats), args.Error(1)
}
