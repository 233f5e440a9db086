package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"churnflow/internal/domain"
)

// MockPredictor is a mock implementation of port.Predictor.
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) PredictBatch(ctx context.Context, records []domain.CustomerRecord) ([]domain.Outcome, error) {
	args := m.Called(ctx, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Outcome), args.Error(1)
}

// MockRecommender is a mock implementation of port.Recommender.
type MockRecommender struct {
	mock.Mock
}

func (m *MockRecommender) Recommend(ctx context.Context, record domain.CustomerRecord) (*domain.RecommendationSet, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecommendationSet), args.Error(1)
}

// MockModelInfoProvider is a mock implementation of port.ModelInfoProvider.
type MockModelInfoProvider struct {
	mock.Mock
}

func (m *MockModelInfoProvider) ModelInfo(ctx context.Context) (*domain.ModelInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelInfo), args.Error(1)
}

// MockHealthChecker is a mock implementation of port.HealthChecker.
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
