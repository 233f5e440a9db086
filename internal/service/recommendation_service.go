package service

import (
	"context"
	"fmt"

	"churnflow/internal/domain"
	"churnflow/internal/normalize"
	"churnflow/internal/port"
)

// RecommendationService fetches retention recommendations for one customer.
type RecommendationService interface {
	Recommend(ctx context.Context, raw domain.RawRecord) (*domain.RecommendationSet, error)
}

type recommendationService struct {
	recommender port.Recommender
}

// NewRecommendationService creates a new RecommendationService implementation.
func NewRecommendationService(recommender port.Recommender) RecommendationService {
	return &recommendationService{recommender: recommender}
}

func (s *recommendationService) Recommend(ctx context.Context, raw domain.RawRecord) (*domain.RecommendationSet, error) {
	rec := normalize.NormalizeOne(0, raw)
	if !rec.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRecord, rec.Invalid.Reason)
	}
	set, err := s.recommender.Recommend(ctx, *rec.Customer)
	if err != nil {
		return nil, fmt.Errorf("fetching recommendations: %w", err)
	}
	return set, nil
}
