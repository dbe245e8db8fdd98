package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"mediaflow/internal/domain"
)

// MockAssetRepo is a mock implementation of port.AssetRepository.
type MockAssetRepo struct {
	mock.Mock
}

func (m *MockAssetRepo) Create(ctx context.Context, asset *domain.MediaAsset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetRepo) GetByID(ctx context.Context, assetID uuid.UUID) (*domain.MediaAsset, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaAsset), args.Error(1)
}

func (m *MockAssetRepo) List(ctx context.Context, offset, limit int) ([]domain.MediaAsset, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.MediaAsset), args.Int(1), args.Error(2)
}

func (m *MockAssetRepo) ListByUploader(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.MediaAsset, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.MediaAsset), args.Int(1), args.Error(2)
}

func (m *MockAssetRepo) UpdateStatus(ctx context.Context, assetID uuid.UUID, status domain.AssetStatus) error {
	args := m.Called(ctx, assetID, status)
	return args.Error(0)
}

func (m *MockAssetRepo) Delete(ctx context.Context, assetID uuid.UUID) error {
	args := m.Called(ctx, assetID)
	return args.Error(0)
}
