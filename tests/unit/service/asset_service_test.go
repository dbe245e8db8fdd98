package service_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mediaflow/internal/config"
	"mediaflow/internal/domain"
	"mediaflow/internal/port"
	"mediaflow/internal/service"
	"mediaflow/mocks"
)

func testS3Config() config.S3Config {
	return config.S3Config{
		Region:        "kr-standard",
		SourceBucket:  "test-sources",
		DeployBucket:  "test-deploy",
		MaxFileSizeMB: 50,
		PresignExpiry: 3600,
	}
}

// createMultipartFile creates a fake multipart file header and content for testing.
func createMultipartFile(filename string, content []byte, contentType string) (multipart.File, *multipart.FileHeader) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)

	part, _ := writer.CreatePart(h)
	_, _ = part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content) + 1024))
	file, _ := form.File["file"][0].Open()
	return file, form.File["file"][0]
}

// pngContent returns minimal valid PNG bytes (magic bytes).
func pngContent() []byte {
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}

func TestAssetService_Upload_Success_PNG(t *testing.T) {
	assetRepo := new(mocks.MockAssetRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewAssetService(assetRepo, storage, &cfg)

	userID := uuid.New()
	file, header := createMultipartFile("logo.png", pngContent(), "image/png")
	defer file.Close()

	assetRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.MediaAsset")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://test-sources/originals/x", ETag: "abc"}, nil)
	assetRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.AssetStatusUploaded).Return(nil)

	asset, err := svc.Upload(context.Background(), service.AssetUploadInput{
		UploadedBy: userID,
		File:       file,
		Header:     header,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.FileTypePNG, asset.FileType)
	assert.Equal(t, "image/png", asset.ContentType)
	assert.Equal(t, domain.AssetStatusUploaded, asset.Status)
	assert.Equal(t, "test-sources", asset.Bucket)
	assert.Contains(t, asset.StorageKey, "originals/")
	assetRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestAssetService_Upload_UnsupportedExtension(t *testing.T) {
	assetRepo := new(mocks.MockAssetRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewAssetService(assetRepo, storage, &cfg)

	file, header := createMultipartFile("malware.exe", []byte("MZ..."), "application/octet-stream")
	defer file.Close()

	asset, err := svc.Upload(context.Background(), service.AssetUploadInput{
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.Nil(t, asset)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	assetRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAssetService_Upload_ExtensionContentMismatch(t *testing.T) {
	assetRepo := new(mocks.MockAssetRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewAssetService(assetRepo, storage, &cfg)

	// PNG magic bytes behind a .jpg name.
	file, header := createMultipartFile("photo.jpg", pngContent(), "image/jpeg")
	defer file.Close()

	asset, err := svc.Upload(context.Background(), service.AssetUploadInput{
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.Nil(t, asset)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestAssetService_Upload_TooLarge(t *testing.T) {
	assetRepo := new(mocks.MockAssetRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	cfg.MaxFileSizeMB = 0
	svc := service.NewAssetService(assetRepo, storage, &cfg)

	file, header := createMultipartFile("logo.png", pngContent(), "image/png")
	defer file.Close()

	asset, err := svc.Upload(context.Background(), service.AssetUploadInput{
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.Nil(t, asset)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestAssetService_Upload_StorageFailure(t *testing.T) {
	assetRepo := new(mocks.MockAssetRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewAssetService(assetRepo, storage, &cfg)

	file, header := createMultipartFile("logo.png", pngContent(), "image/png")
	defer file.Close()

	assetRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.MediaAsset")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(nil, assert.AnError)
	assetRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.AssetStatusFailed).Return(nil)

	asset, err := svc.Upload(context.Background(), service.AssetUploadInput{
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.Nil(t, asset)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	assetRepo.AssertExpectations(t)
}

func TestAssetService_GetDownloadURL(t *testing.T) {
	assetRepo := new(mocks.MockAssetRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewAssetService(assetRepo, storage, &cfg)

	assetID := uuid.New()
	asset := &domain.MediaAsset{
		ID:         assetID,
		Bucket:     "test-sources",
		StorageKey: "originals/x/logo.png",
	}
	assetRepo.On("GetByID", mock.Anything, assetID).Return(asset, nil)
	storage.On("GetPresignedURL", mock.Anything, "test-sources", "originals/x/logo.png", int64(3600)).
		Return("https://signed.example/logo.png", nil)

	url, err := svc.GetDownloadURL(context.Background(), assetID)
	assert.NoError(t, err)
	assert.Equal(t, "https://signed.example/logo.png", url)
}

func TestAssetService_Delete_RemovesObjectFirst(t *testing.T) {
	assetRepo := new(mocks.MockAssetRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewAssetService(assetRepo, storage, &cfg)

	assetID := uuid.New()
	asset := &domain.MediaAsset{ID: assetID, Bucket: "test-sources", StorageKey: "originals/x/logo.png"}
	assetRepo.On("GetByID", mock.Anything, assetID).Return(asset, nil)
	storage.On("Delete", mock.Anything, "test-sources", "originals/x/logo.png").Return(nil)
	assetRepo.On("Delete", mock.Anything, assetID).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), assetID))
	storage.AssertExpectations(t)
	assetRepo.AssertExpectations(t)
}
