package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"mediaflow/internal/domain"
)

// MockDeployService is a mock implementation of service.DeployService.
type MockDeployService struct {
	mock.Mock
}

func (m *MockDeployService) QueueDeploy(ctx context.Context, assetID, triggeredBy uuid.UUID) (*domain.PipelineRun, error) {
	args := m.Called(ctx, assetID, triggeredBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PipelineRun), args.Error(1)
}

func (m *MockDeployService) GetRun(ctx context.Context, runID uuid.UUID) (*domain.PipelineRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PipelineRun), args.Error(1)
}

func (m *MockDeployService) ListRuns(ctx context.Context, status domain.RunStatus, offset, limit int) ([]domain.PipelineRun, int, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PipelineRun), args.Int(1), args.Error(2)
}

func (m *MockDeployService) ListRunsByAsset(ctx context.Context, assetID uuid.UUID, offset, limit int) ([]domain.PipelineRun, int, error) {
	args := m.Called(ctx, assetID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PipelineRun), args.Int(1), args.Error(2)
}

func (m *MockDeployService) ExecuteRun(ctx context.Context, run *domain.PipelineRun) {
	m.Called(ctx, run)
}

func (m *MockDeployService) RunNow(ctx context.Context, runID uuid.UUID) (*domain.PipelineRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PipelineRun), args.Error(1)
}
