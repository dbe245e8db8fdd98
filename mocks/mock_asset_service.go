package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"mediaflow/internal/domain"
	"mediaflow/internal/service"
)

// MockAssetService is a mock implementation of service.AssetService.
type MockAssetService struct {
	mock.Mock
}

func (m *MockAssetService) Upload(ctx context.Context, input service.AssetUploadInput) (*domain.MediaAsset, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaAsset), args.Error(1)
}

func (m *MockAssetService) GetByID(ctx context.Context, assetID uuid.UUID) (*domain.MediaAsset, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaAsset), args.Error(1)
}

func (m *MockAssetService) List(ctx context.Context, offset, limit int) ([]domain.MediaAsset, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.MediaAsset), args.Int(1), args.Error(2)
}

func (m *MockAssetService) ListByUploader(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.MediaAsset, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.MediaAsset), args.Int(1), args.Error(2)
}

func (m *MockAssetService) GetDownloadURL(ctx context.Context, assetID uuid.UUID) (string, error) {
	args := m.Called(ctx, assetID)
	return args.String(0), args.Error(1)
}

func (m *MockAssetService) Delete(ctx context.Context, assetID uuid.UUID) error {
	args := m.Called(ctx, assetID)
	return args.Error(0)
}
