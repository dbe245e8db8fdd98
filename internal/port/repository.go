package port

import (
	"context"

	"github.com/google/uuid"

	"mediaflow/internal/domain"
)

// UserRepository defines the contract for operator account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// AssetRepository defines the contract for media asset persistence.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.MediaAsset) error
	GetByID(ctx context.Context, assetID uuid.UUID) (*domain.MediaAsset, error)
	List(ctx context.Context, offset, limit int) ([]domain.MediaAsset, int, error)
	ListByUploader(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.MediaAsset, int, error)
	UpdateStatus(ctx context.Context, assetID uuid.UUID, status domain.AssetStatus) error
	Delete(ctx context.Context, assetID uuid.UUID) error
}

// RunRepository defines the contract for pipeline run persistence. ClaimQueued
// atomically marks up to limit queued runs as running so concurrent workers
// never pick up the same run twice.
type RunRepository interface {
	Create(ctx context.Context, run *domain.PipelineRun) error
	GetByID(ctx context.Context, runID uuid.UUID) (*domain.PipelineRun, error)
	GetQueuedByAsset(ctx context.Context, assetID uuid.UUID) (*domain.PipelineRun, error)
	List(ctx context.Context, status domain.RunStatus, offset, limit int) ([]domain.PipelineRun, int, error)
	ListByAsset(ctx context.Context, assetID uuid.UUID, offset, limit int) ([]domain.PipelineRun, int, error)
	ListFinishedBetween(ctx context.Context, from, to string) ([]domain.PipelineRun, error)
	ClaimQueued(ctx context.Context, limit int) ([]domain.PipelineRun, error)
	ClaimByID(ctx context.Context, runID uuid.UUID) (*domain.PipelineRun, error)
	Finish(ctx context.Context, run *domain.PipelineRun) error
}
