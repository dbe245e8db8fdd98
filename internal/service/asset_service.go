package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mediaflow/internal/config"
	"mediaflow/internal/domain"
	"mediaflow/internal/port"
)

// AssetUploadInput is the DTO for asset upload requests.
type AssetUploadInput struct {
	UploadedBy uuid.UUID
	File       multipart.File
	Header     *multipart.FileHeader
}

// AssetService defines the media asset management contract. Uploads land in
// the source bucket; deployment to the CDN origin is a separate pipeline run.
type AssetService interface {
	Upload(ctx context.Context, input AssetUploadInput) (*domain.MediaAsset, error)
	GetByID(ctx context.Context, assetID uuid.UUID) (*domain.MediaAsset, error)
	List(ctx context.Context, offset, limit int) ([]domain.MediaAsset, int, error)
	ListByUploader(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.MediaAsset, int, error)
	GetDownloadURL(ctx context.Context, assetID uuid.UUID) (string, error)
	Delete(ctx context.Context, assetID uuid.UUID) error
}

type assetService struct {
	assetRepo port.AssetRepository
	storage   port.ObjectStorage
	cfg       *config.S3Config
}

// NewAssetService creates a new AssetService implementation.
func NewAssetService(
	assetRepo port.AssetRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) AssetService {
	return &assetService{
		assetRepo: assetRepo,
		storage:   storage,
		cfg:       cfg,
	}
}

func (s *assetService) Upload(ctx context.Context, input AssetUploadInput) (*domain.MediaAsset, error) {
	// Validate file extension
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	// Validate file size
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Read first 512 bytes for magic-byte content type detection. Text assets
	// (css/js/html/svg) detect as text/plain variants, so the check only hard
	// rejects binary types claiming to be something else.
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(buf[:n])
	if strings.HasPrefix(detectedType, "image/") && detectedType != domain.AllowedFileTypes[fileType] {
		return nil, domain.ErrUnsupportedFileType
	}

	// Seek back to beginning for upload
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	assetID := uuid.New()
	storageKey := fmt.Sprintf("originals/%s/%s", assetID, input.Header.Filename)
	contentType := domain.AllowedFileTypes[fileType]

	asset := &domain.MediaAsset{
		ID:           assetID,
		UploadedBy:   input.UploadedBy,
		FileName:     assetID.String() + "." + ext,
		OriginalName: input.Header.Filename,
		FileType:     fileType,
		FileSize:     input.Header.Size,
		Bucket:       s.cfg.SourceBucket,
		StorageKey:   storageKey,
		ContentType:  contentType,
		Status:       domain.AssetStatusPending,
	}

	log.Printf("assetService.Upload: uploading %s (%s, %d bytes) by user %s",
		input.Header.Filename, contentType, input.Header.Size, input.UploadedBy)

	// Persist metadata with pending status
	if err := s.assetRepo.Create(ctx, asset); err != nil {
		log.Printf("assetService.Upload: failed to create asset metadata: %v", err)
		return nil, fmt.Errorf("creating asset metadata: %w", err)
	}

	// Upload to the source bucket
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.SourceBucket,
		Key:         storageKey,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Printf("assetService.Upload: storage upload failed for asset %s: %v", asset.ID, err)
		_ = s.assetRepo.UpdateStatus(ctx, asset.ID, domain.AssetStatusFailed)
		return nil, domain.ErrUploadFailed
	}

	if err := s.assetRepo.UpdateStatus(ctx, asset.ID, domain.AssetStatusUploaded); err != nil {
		return nil, fmt.Errorf("updating asset status: %w", err)
	}
	asset.Status = domain.AssetStatusUploaded

	return asset, nil
}

func (s *assetService) GetByID(ctx context.Context, assetID uuid.UUID) (*domain.MediaAsset, error) {
	return s.assetRepo.GetByID(ctx, assetID)
}

func (s *assetService) List(ctx context.Context, offset, limit int) ([]domain.MediaAsset, int, error) {
	return s.assetRepo.List(ctx, offset, limit)
}

func (s *assetService) ListByUploader(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.MediaAsset, int, error) {
	return s.assetRepo.ListByUploader(ctx, userID, offset, limit)
}

func (s *assetService) GetDownloadURL(ctx context.Context, assetID uuid.UUID) (string, error) {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, asset.Bucket, asset.StorageKey, s.cfg.PresignExpiry)
}

func (s *assetService) Delete(ctx context.Context, assetID uuid.UUID) error {
	log.Printf("assetService.Delete: deleting asset %s", assetID)

	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, asset.Bucket, asset.StorageKey); err != nil {
		log.Printf("assetService.Delete: failed to delete from storage: %v", err)
		return fmt.Errorf("deleting from storage: %w", err)
	}

	return s.assetRepo.Delete(ctx, assetID)
}
