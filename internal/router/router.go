package router

import (
	"github.com/gin-gonic/gin"

	"churnflow/internal/handler"
	"churnflow/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware. A nil
// recommendationH leaves the recommendations route unregistered.
func Setup(
	allowedOrigins []string,
	batchH *handler.BatchHandler,
	recommendationH *handler.RecommendationHandler,
	modelH *handler.ModelHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.GET("/schema", batchH.Schema)
	v1.GET("/model", modelH.Info)

	// Batch routes
	batches := v1.Group("/batches")
	batches.POST("", batchH.Upload)
	batches.GET("/:id", batchH.Get)
	batches.GET("/:id/export", batchH.Export)

	if recommendationH != nil {
		v1.POST("/recommendations", recommendationH.Recommend)
	}

	return r
}
