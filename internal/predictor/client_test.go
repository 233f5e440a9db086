package predictor_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnflow/internal/config"
	"churnflow/internal/domain"
	"churnflow/internal/logger"
	"churnflow/internal/predictor"
)

func newTestClient(serverURL string) *predictor.Client {
	cfg := &config.PredictorConfig{
		BaseURL:     serverURL + "/",
		TimeoutSecs: 5,
	}
	return predictor.NewClientWithHTTP(cfg, &http.Client{Timeout: 5 * time.Second})
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func sampleRecords() []domain.CustomerRecord {
	return []domain.CustomerRecord{
		{Gender: strPtr("Female"), Tenure: intPtr(1)},
		{Gender: strPtr("Male"), Tenure: intPtr(40)},
	}
}

func TestClient_PredictBatch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/predict/batch", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body []map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&body)
		assert.NoError(t, err)
		assert.Len(t, body, 2)
		assert.Equal(t, "Female", body[0]["gender"])
		assert.Equal(t, float64(40), body[1]["tenure"])
		assert.NotContains(t, body[0], "TotalCharges")

		_, _ = w.Write([]byte(`{
			"results": [
				{"index": 0, "churn": true, "churn_probability": 0.8231, "confidence": 0.91, "risk_level": "Critical"},
				{"index": 1, "error": "Invalid Contract value"}
			],
			"total": 2,
			"timestamp": "2024-01-01T00:00:00"
		}`))
	}))
	defer server.Close()

	out, err := newTestClient(server.URL).PredictBatch(context.Background(), sampleRecords())

	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, 0, out[0].Index)
	require.NotNil(t, out[0].Success)
	assert.True(t, out[0].Success.Churn)
	assert.InDelta(t, 0.8231, out[0].Success.ChurnProbability, 1e-9)
	assert.InDelta(t, 0.91, out[0].Success.Confidence, 1e-9)
	assert.Equal(t, domain.RiskLevelCritical, out[0].Success.RiskLevel)

	assert.Equal(t, 1, out[1].Index)
	assert.True(t, out[1].IsFailure())
	assert.Equal(t, "Invalid Contract value", out[1].ErrorMessage())
}

func TestClient_PredictBatch_DerivesMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [
			{"index": 0, "churn": false, "churn_probability": 0.25},
			{"index": 1, "churn": true},
			{"churn": true, "churn_probability": 0.9},
			{"index": 1, "churn": true, "churn_probability": 1.7}
		]}`))
	}))
	defer server.Close()

	out, err := newTestClient(server.URL).PredictBatch(context.Background(), sampleRecords())

	require.NoError(t, err)
	require.Len(t, out, 3)

	require.NotNil(t, out[0].Success)
	assert.InDelta(t, 0.75, out[0].Success.Confidence, 1e-9)
	assert.Equal(t, domain.RiskLevelLow, out[0].Success.RiskLevel)

	assert.Equal(t, "prediction missing churn_probability", out[1].ErrorMessage())
	assert.Equal(t, "churn_probability 1.7 out of range", out[2].ErrorMessage())
}

func TestClient_PredictBatch_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "slow down"}`))
	}))
	defer server.Close()

	out, err := newTestClient(server.URL).PredictBatch(context.Background(), sampleRecords())

	assert.Nil(t, out)
	var rlErr *predictor.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 15*time.Second, rlErr.RetryAfter)
	assert.Contains(t, err.Error(), "slow down")
}

func TestClient_PredictBatch_ClientErrorIsSubmissionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "Expected a list of customer data"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).PredictBatch(context.Background(), sampleRecords())

	var subErr *domain.SubmissionError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, http.StatusBadRequest, subErr.StatusCode)
	assert.Contains(t, err.Error(), "Expected a list of customer data")
}

func TestClient_PredictBatch_ServerErrorIsPlain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`model not loaded`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).PredictBatch(context.Background(), sampleRecords())

	require.Error(t, err)
	var subErr *domain.SubmissionError
	assert.False(t, errors.As(err, &subErr))
	var rlErr *predictor.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestClient_PredictBatch_UndecodableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).PredictBatch(context.Background(), sampleRecords())

	var subErr *domain.SubmissionError
	require.True(t, errors.As(err, &subErr))
	assert.Contains(t, err.Error(), "decoding batch response")
}

func TestClient_PredictBatch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).PredictBatch(context.Background(), sampleRecords())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "calling prediction service")
}

func TestClient_Recommend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/recommendations", r.URL.Path)

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Female", body["gender"])

		_, _ = w.Write([]byte(`{
			"churn_probability": 0.72,
			"risk_level": "High",
			"recommendations": [
				{"category": "Contract", "priority": "High", "message": "Offer an annual plan", "impact": "Reduces churn"}
			]
		}`))
	}))
	defer server.Close()

	set, err := newTestClient(server.URL).Recommend(context.Background(), sampleRecords()[0])

	require.NoError(t, err)
	assert.InDelta(t, 0.72, set.ChurnProbability, 1e-9)
	assert.Equal(t, domain.RiskLevelHigh, set.RiskLevel)
	require.Len(t, set.Recommendations, 1)
	assert.Equal(t, "Contract", set.Recommendations[0].Category)
	assert.Equal(t, domain.RiskLevelHigh, set.Recommendations[0].Priority)
}

func TestClient_Ping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"healthy", http.StatusOK, `{"status": "healthy", "model_loaded": true}`, false},
		{"degraded", http.StatusOK, `{"status": "degraded"}`, true},
		{"down", http.StatusServiceUnavailable, ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/health", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := newTestClient(server.URL).Ping(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Duration(0), predictor.ParseRetryAfter("", now))
	assert.Equal(t, time.Duration(0), predictor.ParseRetryAfter("soon", now))
	assert.Equal(t, time.Duration(0), predictor.ParseRetryAfter("-5", now))
	assert.Equal(t, 30*time.Second, predictor.ParseRetryAfter(" 30 ", now))
	assert.Equal(t, 90*time.Second, predictor.ParseRetryAfter("Mon, 01 Jan 2024 12:01:30 GMT", now))
	assert.Equal(t, time.Duration(0), predictor.ParseRetryAfter("Mon, 01 Jan 2024 11:59:00 GMT", now))
}

func TestNewRateLimitError(t *testing.T) {
	err := predictor.NewRateLimitError(errors.New("status 429"), 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.Equal(t, "prediction service rate limited, retry after 1m0s", err.Message())
	assert.Equal(t, "prediction service rate limited, retry after 1m0s: status 429", err.Error())
	assert.False(t, err.CircuitOpen)

	err = predictor.NewRateLimitError(errors.New("status 429"), 1500*time.Millisecond)
	assert.Equal(t, 2*time.Second, err.RetryAfter)
}

func requestContext(buf *bytes.Buffer, requestID string) context.Context {
	l := slog.New(slog.NewJSONHandler(buf, nil)).With("request_id", requestID)
	return logger.WithContext(context.Background(), l)
}

func TestClient_PredictBatch_LogsWithRequestLogger(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [{"error": "unindexed failure"}], "total": 1}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	out, err := newTestClient(server.URL).PredictBatch(requestContext(&buf, "req-9"), sampleRecords())

	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, buf.String(), `"msg":"predictor.PredictBatch: dropping result without index"`)
	assert.Contains(t, buf.String(), `"request_id":"req-9"`)
}

func TestClient_ModelInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/model/info", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"model_name": "XGBoost",
			"metrics": {"accuracy": 0.81, "precision": 0.67, "recall": 0.55, "f1_score": 0.6, "roc_auc": 0.86},
			"features": {"total": 19, "categorical": 15, "numerical": 4},
			"hyperparameters": {"max_depth": 4},
			"timestamp": "2024-01-01T12:00:00"
		}`))
	}))
	defer server.Close()

	info, err := newTestClient(server.URL).ModelInfo(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "XGBoost", info.ModelName)
	assert.InDelta(t, 0.86, info.Metrics.ROCAUC, 1e-9)
	assert.Equal(t, domain.ModelFeatureCounts{Total: 19, Categorical: 15, Numerical: 4}, info.Features)
	assert.Equal(t, float64(4), info.Hyperparameters["max_depth"])
}

func TestClient_ModelInfo_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Model metadata not loaded"}`))
	}))
	defer server.Close()

	info, err := newTestClient(server.URL).ModelInfo(context.Background())

	assert.Nil(t, info)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Model metadata not loaded")
}
