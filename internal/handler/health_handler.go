package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"mediaflow/internal/domain"
	"mediaflow/internal/port"
)

// DBPinger is the slice of the database handle that health checks need.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db      DBPinger
	runRepo port.RunRepository
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DBPinger, runRepo port.RunRepository) *HealthHandler {
	return &HealthHandler{db: db, runRepo: runRepo}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. Beyond the database ping it reports the
// deploy queue backlog so a growing queue is visible from the probe.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}
	_, queued, err := h.runRepo.List(c.Request.Context(), domain.RunStatusQueued, 0, 1)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "run queue not readable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "queued_runs": queued})
}
