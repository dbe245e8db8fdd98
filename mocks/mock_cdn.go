package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mediaflow/internal/port"
)

// MockCDN is a mock implementation of port.CDN.
type MockCDN struct {
	mock.Mock
}

func (m *MockCDN) Purge(ctx context.Context, paths []string) (*port.PurgeTicket, error) {
	args := m.Called(ctx, paths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.PurgeTicket), args.Error(1)
}

func (m *MockCDN) PurgeStatus(ctx context.Context, purgeID string) (*port.PurgeState, error) {
	args := m.Called(ctx, purgeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.PurgeState), args.Error(1)
}

func (m *MockCDN) WaitForPurge(ctx context.Context, purgeID string) error {
	args := m.Called(ctx, purgeID)
	return args.Error(0)
}

func (m *MockCDN) FetchEdge(ctx context.Context, url string) (*port.EdgeResponse, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.EdgeResponse), args.Error(1)
}
