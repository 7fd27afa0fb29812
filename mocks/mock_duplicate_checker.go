package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filewise/internal/domain"
	"filewise/internal/port"
)

// MockDuplicateChecker is a mock implementation of port.DuplicateChecker.
type MockDuplicateChecker struct {
	mock.Mock
}

func (m *MockDuplicateChecker) Check(ctx context.Context, input port.DuplicateCheckInput) (*domain.DuplicateCheckResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DuplicateCheckResult), args.Error(1)
}
