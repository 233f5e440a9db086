package service_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"churnflow/internal/domain"
	"churnflow/internal/predictor"
	"churnflow/internal/service"
	"churnflow/mocks"
)

func valid(i int, gender string) domain.NormalizedRecord {
	g := gender
	return domain.NormalizedRecord{Index: i, Customer: &domain.CustomerRecord{Gender: &g}}
}

func invalid(i int, reason string) domain.NormalizedRecord {
	return domain.NormalizedRecord{Index: i, Invalid: &domain.InvalidRecord{Index: i, Reason: reason}}
}

func prediction(pos int, p float64) domain.Outcome {
	return domain.SuccessOutcome(pos, domain.Prediction{
		Churn:            p >= 0.5,
		ChurnProbability: p,
		Confidence:       0.9,
		RiskLevel:        domain.RiskLevelFromProbability(p),
	})
}

func newBatchService(p *mocks.MockPredictor, store *mocks.MockBatchStore) service.BatchService {
	return service.NewBatchService(p, store, service.BatchServiceConfig{})
}

func TestBatchService_Submit_ReinterleavesAroundInvalid(t *testing.T) {
	p := new(mocks.MockPredictor)
	records := []domain.NormalizedRecord{
		valid(0, "a"), valid(1, "b"), invalid(2, "field tenure not numeric"), valid(3, "d"), valid(4, "e"),
	}
	p.On("PredictBatch", mock.Anything, mock.MatchedBy(func(sent []domain.CustomerRecord) bool {
		return len(sent) == 4 && *sent[2].Gender == "d"
	})).Return([]domain.Outcome{
		prediction(0, 0.1), prediction(1, 0.2), prediction(2, 0.7), prediction(3, 0.9),
	}, nil)

	result, err := newBatchService(p, nil).Submit(context.Background(), records)

	require.NoError(t, err)
	require.Len(t, result, 5)
	require.NoError(t, result.Validate())
	assert.Equal(t, "field tenure not numeric", result[2].ErrorMessage())
	assert.InDelta(t, 0.7, result[3].Success.ChurnProbability, 1e-9)
	assert.InDelta(t, 0.9, result[4].Success.ChurnProbability, 1e-9)
	p.AssertExpectations(t)
}

func TestBatchService_Submit_CollaboratorRejectsOne(t *testing.T) {
	p := new(mocks.MockPredictor)
	records := []domain.NormalizedRecord{valid(0, "a"), valid(1, "b"), valid(2, "c")}
	p.On("PredictBatch", mock.Anything, mock.Anything).Return([]domain.Outcome{
		prediction(0, 0.1), domain.FailureOutcome(1, "Invalid gender"), prediction(2, 0.4),
	}, nil)

	result, err := newBatchService(p, nil).Submit(context.Background(), records)

	require.NoError(t, err)
	assert.False(t, result[0].IsFailure())
	assert.Equal(t, "Invalid gender", result[1].ErrorMessage())
	assert.False(t, result[2].IsFailure())
}

func TestBatchService_Submit_MissingAndStrayPositions(t *testing.T) {
	p := new(mocks.MockPredictor)
	records := []domain.NormalizedRecord{valid(0, "a"), valid(1, "b"), valid(2, "c")}
	p.On("PredictBatch", mock.Anything, mock.Anything).Return([]domain.Outcome{
		prediction(2, 0.9),
		prediction(0, 0.1),
		prediction(0, 0.8),
		prediction(7, 0.5),
		prediction(-1, 0.5),
	}, nil)

	result, err := newBatchService(p, nil).Submit(context.Background(), records)

	require.NoError(t, err)
	require.NoError(t, result.Validate())
	assert.InDelta(t, 0.1, result[0].Success.ChurnProbability, 1e-9)
	assert.Equal(t, "no prediction returned for record", result[1].ErrorMessage())
	assert.InDelta(t, 0.9, result[2].Success.ChurnProbability, 1e-9)
}

func TestBatchService_Submit_AllInvalidSkipsCollaborator(t *testing.T) {
	p := new(mocks.MockPredictor)
	records := []domain.NormalizedRecord{invalid(0, "field tenure not numeric"), invalid(1, "field TotalCharges not numeric")}

	result, err := newBatchService(p, nil).Submit(context.Background(), records)

	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.True(t, result[0].IsFailure())
	assert.True(t, result[1].IsFailure())
	p.AssertNotCalled(t, "PredictBatch", mock.Anything, mock.Anything)
}

func TestBatchService_Submit_WholesaleFailureFolds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"unreachable", errors.New("connection refused"), "prediction service unavailable: connection refused"},
		{"deadline", fmt.Errorf("calling prediction service: %w", context.DeadlineExceeded), "prediction service timed out"},
		{"net timeout", &net.DNSError{Err: "i/o timeout", IsTimeout: true}, "prediction service timed out"},
		{"rate limited", predictor.NewRateLimitError(errors.New("429"), 30*time.Second), "prediction service rate limited, retry after 30s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := new(mocks.MockPredictor)
			records := []domain.NormalizedRecord{valid(0, "a"), invalid(1, "field tenure not numeric"), valid(2, "c")}
			p.On("PredictBatch", mock.Anything, mock.Anything).Return(nil, tt.err)

			result, err := newBatchService(p, nil).Submit(context.Background(), records)

			require.NoError(t, err)
			require.Len(t, result, 3)
			assert.Equal(t, tt.wantMsg, result[0].ErrorMessage())
			assert.Equal(t, "field tenure not numeric", result[1].ErrorMessage())
			assert.Equal(t, tt.wantMsg, result[2].ErrorMessage())
		})
	}
}

func TestBatchService_Submit_SubmissionErrorIsTerminal(t *testing.T) {
	p := new(mocks.MockPredictor)
	subErr := &domain.SubmissionError{StatusCode: 400, Err: errors.New("bad payload")}
	p.On("PredictBatch", mock.Anything, mock.Anything).Return(nil, subErr)

	result, err := newBatchService(p, nil).Submit(context.Background(), []domain.NormalizedRecord{valid(0, "a")})

	assert.Nil(t, result)
	var target *domain.SubmissionError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, 400, target.StatusCode)
}

const csvHeader = "gender,SeniorCitizen,tenure,MonthlyCharges,TotalCharges\n"

func TestBatchService_Run_StoresRun(t *testing.T) {
	p := new(mocks.MockPredictor)
	store := new(mocks.MockBatchStore)
	data := []byte(csvHeader + "Female,0,1,29.85,29.85\nMale,0,abc,56.95,1889.5\n")

	p.On("PredictBatch", mock.Anything, mock.MatchedBy(func(sent []domain.CustomerRecord) bool {
		return len(sent) == 1
	})).Return([]domain.Outcome{prediction(0, 0.82)}, nil)
	store.On("Put", mock.AnythingOfType("*domain.BatchRun")).Return()

	run, err := newBatchService(p, store).Run(context.Background(), "customers.CSV", data)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, "customers.CSV", run.Filename)
	assert.Equal(t, domain.FileFormatCSV, run.Format)
	assert.Empty(t, run.Warnings)
	require.Len(t, run.Result, 2)
	assert.False(t, run.Result[0].IsFailure())
	assert.Equal(t, "field tenure not numeric", run.Result[1].ErrorMessage())
	store.AssertCalled(t, "Put", run)
}

func TestBatchService_Run_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		wantErr  error
	}{
		{"unsupported suffix", "customers.xlsx", csvHeader, domain.ErrUnsupportedFormat},
		{"malformed json", "customers.json", `{"gender": "Male"}`, domain.ErrMalformedJSON},
		{"header only", "customers.csv", csvHeader, domain.ErrEmptyBatch},
		{"empty array", "customers.json", `[]`, domain.ErrEmptyBatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := new(mocks.MockPredictor)
			store := new(mocks.MockBatchStore)

			run, err := newBatchService(p, store).Run(context.Background(), tt.filename, []byte(tt.data))

			assert.Nil(t, run)
			assert.ErrorIs(t, err, tt.wantErr)
			p.AssertNotCalled(t, "PredictBatch", mock.Anything, mock.Anything)
			store.AssertNotCalled(t, "Put", mock.Anything)
		})
	}
}

func TestBatchService_Run_SoftLimitWarns(t *testing.T) {
	p := new(mocks.MockPredictor)
	store := new(mocks.MockBatchStore)
	svc := service.NewBatchService(p, store, service.BatchServiceConfig{SoftLimit: 2})

	data := csvHeader + strings.Repeat("Female,0,1,29.85,29.85\n", 3)
	p.On("PredictBatch", mock.Anything, mock.Anything).Return([]domain.Outcome{
		prediction(0, 0.1), prediction(1, 0.2), prediction(2, 0.3),
	}, nil)
	store.On("Put", mock.Anything).Return()

	run, err := svc.Run(context.Background(), "big.csv", []byte(data))

	require.NoError(t, err)
	require.Len(t, run.Warnings, 1)
	assert.Contains(t, run.Warnings[0], "3 records")
	assert.Len(t, run.Result, 3)
}

func TestBatchService_Get(t *testing.T) {
	store := new(mocks.MockBatchStore)
	id := uuid.New()
	run := &domain.BatchRun{ID: id}
	store.On("Get", id).Return(run, nil)
	missing := uuid.New()
	store.On("Get", missing).Return(nil, domain.ErrBatchNotFound)

	svc := newBatchService(new(mocks.MockPredictor), store)

	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Same(t, run, got)

	_, err = svc.Get(context.Background(), missing)
	assert.ErrorIs(t, err, domain.ErrBatchNotFound)
}
