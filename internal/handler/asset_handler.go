package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mediaflow/internal/domain"
	"mediaflow/internal/service"
)

// AssetHandler handles media asset upload and management endpoints.
type AssetHandler struct {
	assetService service.AssetService
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetService service.AssetService) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

// parsePagination reads and clamps the offset/limit query parameters.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// Upload handles POST /api/v1/assets/upload
// @Summary Upload a media asset
// @Description Upload a media file (images, css, js, html) to the source bucket
// @Tags assets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Media file to upload"
// @Success 201 {object} Response{data=domain.MediaAsset} "Asset uploaded"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Security BearerAuth
// @Router /assets/upload [post]
func (h *AssetHandler) Upload(c *gin.Context) {
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	asset, err := h.assetService.Upload(c.Request.Context(), service.AssetUploadInput{
		UploadedBy: userID,
		File:       file,
		Header:     header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, asset)
}

// List handles GET /api/v1/assets
// @Summary List media assets
// @Description List assets with pagination; pass mine=true to only list your uploads
// @Tags assets
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Param mine query bool false "Only assets uploaded by the caller"
// @Success 200 {object} Response{data=[]domain.MediaAsset,meta=PagMeta} "List of assets"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /assets [get]
func (h *AssetHandler) List(c *gin.Context) {
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)

	var (
		assets []domain.MediaAsset
		total  int
		err    error
	)
	if c.Query("mine") == "true" {
		assets, total, err = h.assetService.ListByUploader(c.Request.Context(), userID, offset, limit)
	} else {
		assets, total, err = h.assetService.List(c.Request.Context(), offset, limit)
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, assets, total, offset, limit)
}

// GetByID handles GET /api/v1/assets/:id
// @Summary Get asset by ID
// @Description Get asset metadata and a presigned download URL for the source object
// @Tags assets
// @Produce json
// @Param id path string true "Asset ID (UUID)"
// @Success 200 {object} Response{data=AssetWithDownloadURL} "Asset metadata with download URL"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Asset not found"
// @Security BearerAuth
// @Router /assets/{id} [get]
func (h *AssetHandler) GetByID(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid asset ID")
		return
	}

	asset, err := h.assetService.GetByID(c.Request.Context(), assetID)
	if err != nil {
		HandleError(c, err)
		return
	}

	downloadURL, err := h.assetService.GetDownloadURL(c.Request.Context(), assetID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"asset":        asset,
		"download_url": downloadURL,
	})
}

// Delete handles DELETE /api/v1/assets/:id
// @Summary Delete an asset
// @Description Remove the source object and soft-delete the asset (admin only)
// @Tags assets
// @Produce json
// @Param id path string true "Asset ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Asset deleted"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Failure 404 {object} ErrorResponseBody "Asset not found"
// @Security BearerAuth
// @Router /assets/{id} [delete]
func (h *AssetHandler) Delete(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid asset ID")
		return
	}

	if err := h.assetService.Delete(c.Request.Context(), assetID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "asset deleted"})
}
