package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"churnflow/internal/domain"
	"churnflow/internal/logger"
	"churnflow/internal/service"
)

// RecommendationHandler proxies single-customer recommendation requests.
type RecommendationHandler struct {
	recommendationService service.RecommendationService
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(recommendationService service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

// Recommend handles POST /api/v1/recommendations
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		HandleError(c, domain.ErrInvalidRecordPayload)
		return
	}

	set, err := h.recommendationService.Recommend(c.Request.Context(), domain.RawRecord(raw))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRecord) {
			HandleError(c, err)
			return
		}
		logger.FromContext(c.Request.Context()).Warn("recommendationHandler.Recommend: prediction service call failed", "error", err)
		RespondError(c, http.StatusBadGateway, "PREDICTOR_UNAVAILABLE", "recommendation service is unavailable")
		return
	}

	RespondOK(c, set)
}
