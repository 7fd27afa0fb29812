package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filewise/internal/port"
)

// MockProgressPublisher is a mock implementation of port.ProgressPublisher.
type MockProgressPublisher struct {
	mock.Mock
}

func (m *MockProgressPublisher) Publish(ctx context.Context, event port.BatchProgressEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockProgressSubscriber is a mock implementation of port.ProgressSubscriber.
type MockProgressSubscriber struct {
	mock.Mock
}

func (m *MockProgressSubscriber) Subscribe(ctx context.Context) (<-chan port.BatchProgressEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan port.BatchProgressEvent), args.Error(1)
}
