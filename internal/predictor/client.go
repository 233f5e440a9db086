// Package predictor talks to the remote churn-prediction service.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"churnflow/internal/config"
	"churnflow/internal/domain"
	"churnflow/internal/logger"
)

const (
	batchPath           = "/api/predict/batch"
	recommendationsPath = "/api/recommendations"
	healthPath          = "/api/health"
	modelInfoPath       = "/api/model/info"

	maxResponseBytes    = 32 << 20
)

// Client implements port.Predictor, port.Recommender, port.ModelInfoProvider
// and port.HealthChecker over the prediction service's JSON API.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client from the predictor config.
func NewClient(cfg *config.PredictorConfig) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout()})
}

// NewClientWithHTTP creates a Client with a caller-supplied http.Client (for testing).
func NewClientWithHTTP(cfg *config.PredictorConfig, hc *http.Client) *Client {
	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  hc,
		limiter: limiter,
	}
}

// batchItem is one entry of the service's batch response. Successful entries
// carry the prediction fields; failed entries carry only index and error.
type batchItem struct {
	Index            *int     `json:"index"`
	Churn            bool     `json:"churn"`
	ChurnProbability *float64 `json:"churn_probability"`
	Confidence       *float64 `json:"confidence"`
	RiskLevel        string   `json:"risk_level"`
	Error            string   `json:"error"`
}

type batchResponse struct {
	Results []batchItem `json:"results"`
	Total   int         `json:"total"`
}

// PredictBatch sends all records in a single request. Returned outcomes are
// indexed by position in records. Entries the service sent without an index
// are dropped, so callers must not assume one outcome per record.
func (c *Client) PredictBatch(ctx context.Context, records []domain.CustomerRecord) ([]domain.Outcome, error) {
	if records == nil {
		records = []domain.CustomerRecord{}
	}
	respBody, err := c.post(ctx, batchPath, records)
	if err != nil {
		return nil, err
	}

	var resp batchResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &domain.SubmissionError{Err: fmt.Errorf("decoding batch response: %w", err)}
	}

	outcomes := make([]domain.Outcome, 0, len(resp.Results))
	for _, item := range resp.Results {
		if item.Index == nil {
			logger.FromContext(ctx).Warn("predictor.PredictBatch: dropping result without index", "error", item.Error)
			continue
		}
		outcomes = append(outcomes, item.toOutcome())
	}
	return outcomes, nil
}

func (item batchItem) toOutcome() domain.Outcome {
	idx := *item.Index
	if item.Error != "" {
		return domain.FailureOutcome(idx, item.Error)
	}
	if item.ChurnProbability == nil {
		return domain.FailureOutcome(idx, "prediction missing churn_probability")
	}
	p := *item.ChurnProbability
	if p < 0 || p > 1 {
		return domain.FailureOutcome(idx, fmt.Sprintf("churn_probability %v out of range", p))
	}

	// The service reports confidence as the larger class probability.
	confidence := p
	if 1-p > confidence {
		confidence = 1 - p
	}
	if item.Confidence != nil {
		confidence = *item.Confidence
	}

	level, ok := domain.ParseRiskLevel(item.RiskLevel)
	if !ok {
		level = domain.RiskLevelFromProbability(p)
	}

	return domain.SuccessOutcome(idx, domain.Prediction{
		Churn:            item.Churn,
		ChurnProbability: p,
		Confidence:       confidence,
		RiskLevel:        level,
	})
}

type recommendationItem struct {
	Category string `json:"category"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
	Impact   string `json:"impact"`
}

type recommendationResponse struct {
	ChurnProbability float64              `json:"churn_probability"`
	RiskLevel        string               `json:"risk_level"`
	Recommendations  []recommendationItem `json:"recommendations"`
}

// Recommend asks the service for retention actions for one customer.
func (c *Client) Recommend(ctx context.Context, record domain.CustomerRecord) (*domain.RecommendationSet, error) {
	respBody, err := c.post(ctx, recommendationsPath, record)
	if err != nil {
		return nil, err
	}

	var resp recommendationResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding recommendation response: %w", err)
	}

	level, ok := domain.ParseRiskLevel(resp.RiskLevel)
	if !ok {
		level = domain.RiskLevelFromProbability(resp.ChurnProbability)
	}
	set := &domain.RecommendationSet{
		ChurnProbability: resp.ChurnProbability,
		RiskLevel:        level,
		Recommendations:  make([]domain.Recommendation, 0, len(resp.Recommendations)),
	}
	for _, r := range resp.Recommendations {
		priority, _ := domain.ParseRiskLevel(r.Priority)
		set.Recommendations = append(set.Recommendations, domain.Recommendation{
			Category: r.Category,
			Priority: priority,
			Message:  r.Message,
			Impact:   r.Impact,
		})
	}
	return set, nil
}

// ModelInfo fetches the name, scores and feature counts of the serving model.
func (c *Client) ModelInfo(ctx context.Context) (*domain.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+modelInfoPath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling prediction service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prediction service error (status %d): %s", resp.StatusCode, errorMessage(respBody))
	}

	var info domain.ModelInfo
	if err := json.Unmarshal(respBody, &info); err != nil {
		return nil, fmt.Errorf("decoding model info: %w", err)
	}
	if info.Hyperparameters == nil {
		info.Hyperparameters = map[string]any{}
	}
	return &info, nil
}

// Ping checks the service's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling prediction service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("prediction service unhealthy (status %d)", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err == nil && body.Status != "" && body.Status != "healthy" {
		return fmt.Errorf("prediction service reports status %q", body.Status)
	}
	return nil
}

// post sends payload as JSON and returns the body of a 200 response. Non-200
// statuses map to errors: 429 to *RateLimitError, other 4xx to
// *domain.SubmissionError, 5xx to a plain error.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling prediction service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		return respBody, nil
	}

	baseErr := fmt.Errorf("prediction service error (status %d): %s", resp.StatusCode, errorMessage(respBody))
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		return nil, NewRateLimitError(baseErr, retryAfter)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &domain.SubmissionError{StatusCode: resp.StatusCode, Err: baseErr}
	default:
		return nil, baseErr
	}
}

// errorMessage extracts {"error": "..."} from a failure body, falling back to
// the truncated raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return truncate(strings.TrimSpace(string(body)), 500)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
