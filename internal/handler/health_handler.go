package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"churnflow/internal/port"
)

const readinessTimeout = 3 * time.Second

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	predictor port.HealthChecker
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(predictor port.HealthChecker) *HealthHandler {
	return &HealthHandler{predictor: predictor}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.predictor.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "prediction service not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
