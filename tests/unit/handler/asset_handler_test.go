package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mediaflow/internal/domain"
	"mediaflow/internal/handler"
	"mediaflow/internal/middleware"
	"mediaflow/mocks"
)

// authedContext builds a test context carrying an authenticated member.
func authedContext(w *httptest.ResponseRecorder, userID uuid.UUID, role domain.UserRole) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextKeyUserID, userID)
	c.Set(middleware.ContextKeyRole, string(role))
	return c
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	assert.NoError(t, err)
	_, err = fw.Write(content)
	assert.NoError(t, err)
	assert.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAssetHandler_Upload_Success(t *testing.T) {
	mockAssets := new(mocks.MockAssetService)
	h := handler.NewAssetHandler(mockAssets)

	userID := uuid.New()
	asset := &domain.MediaAsset{ID: uuid.New(), OriginalName: "photo.png", Status: domain.AssetStatusUploaded}
	mockAssets.On("Upload", mock.Anything, mock.AnythingOfType("service.AssetUploadInput")).
		Return(asset, nil)

	body, contentType := multipartBody(t, "file", "photo.png", []byte("fake png bytes"))

	w := httptest.NewRecorder()
	c := authedContext(w, userID, domain.RoleMember)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/assets/upload", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockAssets.AssertExpectations(t)
}

func TestAssetHandler_Upload_MissingFile(t *testing.T) {
	h := handler.NewAssetHandler(new(mocks.MockAssetService))

	w := httptest.NewRecorder()
	c := authedContext(w, uuid.New(), domain.RoleMember)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/assets/upload", bytes.NewReader(nil))
	c.Request.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssetHandler_Upload_NoAuthContext(t *testing.T) {
	h := handler.NewAssetHandler(new(mocks.MockAssetService))

	body, contentType := multipartBody(t, "file", "photo.png", []byte("data"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/assets/upload", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAssetHandler_Upload_TooLarge(t *testing.T) {
	mockAssets := new(mocks.MockAssetService)
	h := handler.NewAssetHandler(mockAssets)

	mockAssets.On("Upload", mock.Anything, mock.AnythingOfType("service.AssetUploadInput")).
		Return(nil, domain.ErrFileTooLarge)

	body, contentType := multipartBody(t, "file", "big.png", []byte("data"))

	w := httptest.NewRecorder()
	c := authedContext(w, uuid.New(), domain.RoleMember)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/assets/upload", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAssetHandler_List_All(t *testing.T) {
	mockAssets := new(mocks.MockAssetService)
	h := handler.NewAssetHandler(mockAssets)

	assets := []domain.MediaAsset{{ID: uuid.New()}, {ID: uuid.New()}}
	mockAssets.On("List", mock.Anything, 0, 20).Return(assets, 2, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, uuid.New(), domain.RoleMember)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/assets", http.NoBody)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Meta)
	mockAssets.AssertExpectations(t)
}

func TestAssetHandler_List_Mine(t *testing.T) {
	mockAssets := new(mocks.MockAssetService)
	h := handler.NewAssetHandler(mockAssets)

	userID := uuid.New()
	mockAssets.On("ListByUploader", mock.Anything, userID, 0, 20).
		Return([]domain.MediaAsset{{ID: uuid.New(), UploadedBy: userID}}, 1, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, userID, domain.RoleMember)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/assets?mine=true", http.NoBody)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockAssets.AssertExpectations(t)
}

func TestAssetHandler_GetByID_WithDownloadURL(t *testing.T) {
	mockAssets := new(mocks.MockAssetService)
	h := handler.NewAssetHandler(mockAssets)

	assetID := uuid.New()
	mockAssets.On("GetByID", mock.Anything, assetID).
		Return(&domain.MediaAsset{ID: assetID, OriginalName: "site.css"}, nil)
	mockAssets.On("GetDownloadURL", mock.Anything, assetID).
		Return("https://storage.test/presigned", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/assets/"+assetID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: assetID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "https://storage.test/presigned", data["download_url"])
	mockAssets.AssertExpectations(t)
}

func TestAssetHandler_GetByID_NotFound(t *testing.T) {
	mockAssets := new(mocks.MockAssetService)
	h := handler.NewAssetHandler(mockAssets)

	assetID := uuid.New()
	mockAssets.On("GetByID", mock.Anything, assetID).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/assets/"+assetID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: assetID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssetHandler_Delete_Success(t *testing.T) {
	mockAssets := new(mocks.MockAssetService)
	h := handler.NewAssetHandler(mockAssets)

	assetID := uuid.New()
	mockAssets.On("Delete", mock.Anything, assetID).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/assets/"+assetID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: assetID.String()}}

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockAssets.AssertExpectations(t)
}
