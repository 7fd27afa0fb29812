package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"filewise/internal/domain"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendBatchReviewEmail(ctx context.Context, toEmail string, batch *domain.BulkUploadBatch) error {
	args := m.Called(ctx, toEmail, batch)
	return args.Error(0)
}
