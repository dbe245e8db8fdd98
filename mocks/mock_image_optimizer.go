package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mediaflow/internal/port"
)

// MockImageOptimizer is a mock implementation of port.ImageOptimizer.
type MockImageOptimizer struct {
	mock.Mock
}

func (m *MockImageOptimizer) Optimize(ctx context.Context, input port.OptimizeInput) (*port.OptimizeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.OptimizeOutput), args.Error(1)
}

func (m *MockImageOptimizer) Thumbnail(ctx context.Context, data []byte, contentType string, spec port.ThumbnailSpec, quality int) (*port.OptimizeOutput, error) {
	args := m.Called(ctx, data, contentType, spec, quality)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.OptimizeOutput), args.Error(1)
}
