package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mediaflow/internal/domain"
	"mediaflow/internal/service"
)

// RunHandler handles deployment run endpoints.
type RunHandler struct {
	deployService service.DeployService
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(deployService service.DeployService) *RunHandler {
	return &RunHandler{deployService: deployService}
}

// Deploy handles POST /api/v1/assets/:id/deploy
// @Summary Queue a deployment run
// @Description Queue the asset for a pipeline run; the queue worker picks it up
// @Tags runs
// @Produce json
// @Param id path string true "Asset ID (UUID)"
// @Success 202 {object} Response{data=domain.PipelineRun} "Run queued"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Asset not found"
// @Failure 409 {object} ErrorResponseBody "Run already queued or asset not deployable"
// @Security BearerAuth
// @Router /assets/{id}/deploy [post]
func (h *RunHandler) Deploy(c *gin.Context) {
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid asset ID")
		return
	}

	run, err := h.deployService.QueueDeploy(c.Request.Context(), assetID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, run)
}

// GetByID handles GET /api/v1/runs/:id
// @Summary Get run by ID
// @Description Get a pipeline run, including its stage-by-stage result once finished
// @Tags runs
// @Produce json
// @Param id path string true "Run ID (UUID)"
// @Success 200 {object} Response{data=domain.PipelineRun} "Run details"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Run not found"
// @Security BearerAuth
// @Router /runs/{id} [get]
func (h *RunHandler) GetByID(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run ID")
		return
	}

	run, err := h.deployService.GetRun(c.Request.Context(), runID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, run)
}

// List handles GET /api/v1/runs
// @Summary List runs
// @Description List pipeline runs with optional status filter
// @Tags runs
// @Produce json
// @Param status query string false "Filter by status (queued, running, succeeded, rolled_back)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.PipelineRun,meta=PagMeta} "List of runs"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /runs [get]
func (h *RunHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	status := domain.RunStatus(c.Query("status"))

	runs, total, err := h.deployService.ListRuns(c.Request.Context(), status, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, runs, total, offset, limit)
}

// ListByAsset handles GET /api/v1/assets/:id/runs
// @Summary List runs for an asset
// @Description List the deployment history of one asset, newest first
// @Tags runs
// @Produce json
// @Param id path string true "Asset ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.PipelineRun,meta=PagMeta} "List of runs"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /assets/{id}/runs [get]
func (h *RunHandler) ListByAsset(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid asset ID")
		return
	}

	offset, limit := parsePagination(c)

	runs, total, err := h.deployService.ListRunsByAsset(c.Request.Context(), assetID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, runs, total, offset, limit)
}
