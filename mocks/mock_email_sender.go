package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mediaflow/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendRunFailureEmail(ctx context.Context, toEmail string, report port.RunReport) error {
	args := m.Called(ctx, toEmail, report)
	return args.Error(0)
}
