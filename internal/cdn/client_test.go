package cdn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaflow/internal/config"
	"mediaflow/internal/domain"
	"mediaflow/internal/pipeline"
)

func testConfig() *config.CDNConfig {
	return &config.CDNConfig{
		ServiceID:     "svc-123",
		AccessKey:     "ak",
		SecretKey:     "sk",
		TimeoutSecs:   5,
		PurgePollSecs: 1,
		PurgeWaitSecs: 10,
	}
}

func TestPurge_Success(t *testing.T) {
	var got purgeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, purgePath, r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("x-api-signature"))
		assert.Equal(t, "ak", r.Header.Get("x-api-access-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(purgeResponse{
			PurgeID: "purge_42", Status: "in_progress", PathsCount: len(got.Paths),
		})
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	ticket, err := c.Purge(context.Background(), []string{"/images/a.jpg", "/images/b.jpg"})
	require.NoError(t, err)

	assert.Equal(t, "purge_42", ticket.PurgeID)
	assert.Equal(t, 2, ticket.PathsCount)
	assert.Equal(t, "svc-123", got.ServiceID)
	assert.Equal(t, "path", got.PurgeType)
}

func TestPurge_EmptyPaths(t *testing.T) {
	c := NewClientWithEndpoint(testConfig(), "http://unused")
	_, err := c.Purge(context.Background(), nil)
	assert.Error(t, err)
}

func TestPurge_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream sad", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	_, err := c.Purge(context.Background(), []string{"/a"})
	require.Error(t, err)
	assert.Equal(t, pipeline.FailureTransient, pipeline.ClassOf(err))
}

func TestPurge_BadRequestIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad service id", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	_, err := c.Purge(context.Background(), []string{"/a"})
	require.Error(t, err)
	assert.Equal(t, pipeline.FailurePermanent, pipeline.ClassOf(err))
}

func TestPurgeStatus_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	_, err := c.PurgeStatus(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWaitForPurge_CompletesAfterPolling(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		status := "in_progress"
		if calls >= 2 {
			status = "completed"
		}
		_ = json.NewEncoder(w).Encode(purgeResponse{PurgeID: "purge_42", Status: status, ProgressPercent: calls * 50})
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	err := c.WaitForPurge(context.Background(), "purge_42")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 2)
}

func TestWaitForPurge_Failed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(purgeResponse{PurgeID: "purge_9", Status: "failed", ProgressPercent: 30})
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	err := c.WaitForPurge(context.Background(), "purge_9")
	require.Error(t, err)
	assert.Equal(t, pipeline.FailurePermanent, pipeline.ClassOf(err))
}

func TestFetchEdge_ReadsCacheHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Age", "120")
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	edge, err := c.FetchEdge(context.Background(), srv.URL+"/optimized/photo.jpg")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, edge.StatusCode)
	assert.Equal(t, "HIT", edge.CacheStatus)
	assert.Equal(t, 120, edge.CacheAge)
	assert.Equal(t, "image/jpeg", edge.ContentType)
	assert.Greater(t, edge.ResponseTime.Nanoseconds(), int64(0))
}

func TestFetchEdge_MissingCacheHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(testConfig(), srv.URL)
	edge, err := c.FetchEdge(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", edge.CacheStatus)
}
