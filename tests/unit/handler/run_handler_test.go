package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mediaflow/internal/domain"
	"mediaflow/internal/handler"
	"mediaflow/mocks"
)

func TestRunHandler_Deploy_Accepted(t *testing.T) {
	mockDeploy := new(mocks.MockDeployService)
	h := handler.NewRunHandler(mockDeploy)

	userID := uuid.New()
	assetID := uuid.New()
	run := &domain.PipelineRun{ID: uuid.New(), AssetID: assetID, Status: domain.RunStatusQueued}
	mockDeploy.On("QueueDeploy", mock.Anything, assetID, userID).Return(run, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, userID, domain.RoleMember)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/assets/"+assetID.String()+"/deploy", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: assetID.String()}}

	h.Deploy(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	mockDeploy.AssertExpectations(t)
}

func TestRunHandler_Deploy_AlreadyQueued(t *testing.T) {
	mockDeploy := new(mocks.MockDeployService)
	h := handler.NewRunHandler(mockDeploy)

	assetID := uuid.New()
	mockDeploy.On("QueueDeploy", mock.Anything, assetID, mock.Anything).
		Return(nil, domain.ErrRunAlreadyQueued)

	w := httptest.NewRecorder()
	c := authedContext(w, uuid.New(), domain.RoleMember)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/assets/"+assetID.String()+"/deploy", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: assetID.String()}}

	h.Deploy(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRunHandler_Deploy_NotDeployable(t *testing.T) {
	mockDeploy := new(mocks.MockDeployService)
	h := handler.NewRunHandler(mockDeploy)

	assetID := uuid.New()
	mockDeploy.On("QueueDeploy", mock.Anything, assetID, mock.Anything).
		Return(nil, domain.ErrAssetNotDeployable)

	w := httptest.NewRecorder()
	c := authedContext(w, uuid.New(), domain.RoleMember)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/assets/"+assetID.String()+"/deploy", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: assetID.String()}}

	h.Deploy(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRunHandler_Deploy_InvalidID(t *testing.T) {
	h := handler.NewRunHandler(new(mocks.MockDeployService))

	w := httptest.NewRecorder()
	c := authedContext(w, uuid.New(), domain.RoleMember)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/assets/nope/deploy", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	h.Deploy(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunHandler_GetByID_Success(t *testing.T) {
	mockDeploy := new(mocks.MockDeployService)
	h := handler.NewRunHandler(mockDeploy)

	runID := uuid.New()
	run := &domain.PipelineRun{ID: runID, Status: domain.RunStatusSucceeded}
	mockDeploy.On("GetRun", mock.Anything, runID).Return(run, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/runs/"+runID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: runID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "succeeded", data["status"])
	mockDeploy.AssertExpectations(t)
}

func TestRunHandler_GetByID_NotFound(t *testing.T) {
	mockDeploy := new(mocks.MockDeployService)
	h := handler.NewRunHandler(mockDeploy)

	runID := uuid.New()
	mockDeploy.On("GetRun", mock.Anything, runID).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/runs/"+runID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: runID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunHandler_List_StatusFilter(t *testing.T) {
	mockDeploy := new(mocks.MockDeployService)
	h := handler.NewRunHandler(mockDeploy)

	runs := []domain.PipelineRun{{ID: uuid.New(), Status: domain.RunStatusRolledBack}}
	mockDeploy.On("ListRuns", mock.Anything, domain.RunStatusRolledBack, 0, 20).Return(runs, 1, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/runs?status=rolled_back", http.NoBody)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockDeploy.AssertExpectations(t)
}

func TestRunHandler_ListByAsset_Success(t *testing.T) {
	mockDeploy := new(mocks.MockDeployService)
	h := handler.NewRunHandler(mockDeploy)

	assetID := uuid.New()
	runs := []domain.PipelineRun{
		{ID: uuid.New(), AssetID: assetID},
		{ID: uuid.New(), AssetID: assetID},
	}
	mockDeploy.On("ListRunsByAsset", mock.Anything, assetID, 0, 20).Return(runs, 2, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/assets/"+assetID.String()+"/runs", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: assetID.String()}}

	h.ListByAsset(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Meta)
	mockDeploy.AssertExpectations(t)
}
