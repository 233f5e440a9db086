package port

import (
	"context"

	"churnflow/internal/domain"
)

// Predictor abstracts the remote churn-prediction service.
//
// PredictBatch sends every record in one request. Each returned outcome's
// Index is the record's position in records, not its upload index. A returned
// error means the call failed as a whole and no outcome can be trusted.
type Predictor interface {
	PredictBatch(ctx context.Context, records []domain.CustomerRecord) ([]domain.Outcome, error)
}

// Recommender abstracts the retention-recommendation service.
type Recommender interface {
	Recommend(ctx context.Context, record domain.CustomerRecord) (*domain.RecommendationSet, error)
}

// ModelInfoProvider reports metadata about the model serving predictions.
type ModelInfoProvider interface {
	ModelInfo(ctx context.Context) (*domain.ModelInfo, error)
}

// HealthChecker reports whether a collaborator is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
