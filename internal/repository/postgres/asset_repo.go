package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mediaflow/internal/domain"
	"mediaflow/internal/port"
)

type assetRepo struct {
	db *sqlx.DB
}

// NewAssetRepo creates a new PostgreSQL-backed AssetRepository.
func NewAssetRepo(db *sqlx.DB) port.AssetRepository {
	return &assetRepo{db: db}
}

func (r *assetRepo) Create(ctx context.Context, asset *domain.MediaAsset) error {
	now := time.Now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	query := `INSERT INTO media_assets (
		id, uploaded_by, file_name, original_name, file_type, file_size,
		bucket, storage_key, content_type, status, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		asset.ID, asset.UploadedBy, asset.FileName, asset.OriginalName,
		asset.FileType, asset.FileSize, asset.Bucket, asset.StorageKey,
		asset.ContentType, asset.Status, asset.CreatedAt, asset.UpdatedAt)
	if err != nil {
		return fmt.Errorf("assetRepo.Create: %w", err)
	}
	return nil
}

func (r *assetRepo) GetByID(ctx context.Context, assetID uuid.UUID) (*domain.MediaAsset, error) {
	var asset domain.MediaAsset
	err := r.db.GetContext(ctx, &asset, "SELECT * FROM media_assets WHERE id = $1", assetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("assetRepo.GetByID: %w", err)
	}
	return &asset, nil
}

func (r *assetRepo) List(ctx context.Context, offset, limit int) ([]domain.MediaAsset, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM media_assets WHERE status != $1", domain.AssetStatusDeleted)
	if err != nil {
		return nil, 0, fmt.Errorf("assetRepo.List count: %w", err)
	}

	var assets []domain.MediaAsset
	err = r.db.SelectContext(ctx, &assets,
		`SELECT * FROM media_assets WHERE status != $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		domain.AssetStatusDeleted, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("assetRepo.List: %w", err)
	}
	return assets, total, nil
}

func (r *assetRepo) ListByUploader(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.MediaAsset, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM media_assets WHERE uploaded_by = $1 AND status != $2",
		userID, domain.AssetStatusDeleted)
	if err != nil {
		return nil, 0, fmt.Errorf("assetRepo.ListByUploader count: %w", err)
	}

	var assets []domain.MediaAsset
	err = r.db.SelectContext(ctx, &assets,
		`SELECT * FROM media_assets WHERE uploaded_by = $1 AND status != $2
		 ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		userID, domain.AssetStatusDeleted, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("assetRepo.ListByUploader: %w", err)
	}
	return assets, total, nil
}

func (r *assetRepo) UpdateStatus(ctx context.Context, assetID uuid.UUID, status domain.AssetStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE media_assets SET status = $1, updated_at = NOW() WHERE id = $2",
		status, assetID)
	if err != nil {
		return fmt.Errorf("assetRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *assetRepo) Delete(ctx context.Context, assetID uuid.UUID) error {
	// Soft delete: the row stays for run history, the status hides it.
	return r.UpdateStatus(ctx, assetID, domain.AssetStatusDeleted)
}
