package predictor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"churnflow/internal/domain"
	"churnflow/internal/logger"
	"churnflow/internal/port"
)

// circuitState tracks rate-limit backoff for the prediction service.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// CircuitPredictor stops calling the service after a 429 until the advertised
// Retry-After has elapsed, failing batches fast in the meantime. It never
// retries on its own.
type CircuitPredictor struct {
	next    port.Predictor
	circuit circuitState
	now     func() time.Time
}

// NewCircuitPredictor wraps next with rate-limit circuit breaking.
func NewCircuitPredictor(next port.Predictor) *CircuitPredictor {
	return &CircuitPredictor{next: next, now: time.Now}
}

// NewCircuitPredictorWithClock is NewCircuitPredictor with an injectable clock (for testing).
func NewCircuitPredictorWithClock(next port.Predictor, now func() time.Time) *CircuitPredictor {
	return &CircuitPredictor{next: next, now: now}
}

func (p *CircuitPredictor) PredictBatch(ctx context.Context, records []domain.CustomerRecord) ([]domain.Outcome, error) {
	now := p.now()
	if resetAt, open := p.circuit.isOpenWithReset(now); open {
		logger.FromContext(ctx).Warn("predictor.CircuitPredictor: circuit open, skipping call",
			"reset_at", resetAt.Format(time.RFC3339), "records", len(records))
		rlErr := NewRateLimitError(fmt.Errorf("circuit open until %s", resetAt.Format(time.RFC3339)), resetAt.Sub(now))
		rlErr.CircuitOpen = true
		return nil, rlErr
	}

	out, err := p.next.PredictBatch(ctx, records)
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		p.circuit.open(now.Add(rlErr.RetryAfter))
		logger.FromContext(ctx).Warn("predictor.CircuitPredictor: rate limited, opening circuit", "retry_after", rlErr.RetryAfter)
	}
	return out, err
}
