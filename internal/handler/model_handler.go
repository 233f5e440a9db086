package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"churnflow/internal/logger"
	"churnflow/internal/port"
)

// ModelHandler exposes metadata about the model behind predictions.
type ModelHandler struct {
	models port.ModelInfoProvider
}

// NewModelHandler creates a new ModelHandler.
func NewModelHandler(models port.ModelInfoProvider) *ModelHandler {
	return &ModelHandler{models: models}
}

// Info handles GET /api/v1/model
func (h *ModelHandler) Info(c *gin.Context) {
	info, err := h.models.ModelInfo(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("modelHandler.Info: prediction service call failed", "error", err)
		RespondError(c, http.StatusBadGateway, "PREDICTOR_UNAVAILABLE", "model information is unavailable")
		return
	}
	RespondOK(c, info)
}
