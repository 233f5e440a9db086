package predictor

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// defaultRetryAfter applies when a 429 carries no usable Retry-After.
const defaultRetryAfter = 60 * time.Second

// RateLimitError reports that the prediction service refused a batch with
// HTTP 429, or that the circuit opened by an earlier 429 is still open.
// Every record in the refused batch fails with Message().
type RateLimitError struct {
	Err         error
	RetryAfter  time.Duration
	CircuitOpen bool
}

// NewRateLimitError creates a RateLimitError. A non-positive retryAfter
// becomes 60s; anything else is rounded up to whole seconds.
func NewRateLimitError(err error, retryAfter time.Duration) *RateLimitError {
	if retryAfter <= 0 {
		retryAfter = defaultRetryAfter
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(math.Ceil(retryAfter.Seconds())) * time.Second,
	}
}

// Message is the per-record failure text for a rate-limited batch.
func (e *RateLimitError) Message() string {
	return fmt.Sprintf("prediction service rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Error() string {
	if e.Err == nil {
		return e.Message()
	}
	return e.Message() + ": " + e.Err.Error()
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// ParseRetryAfter reads a Retry-After header given either as delta-seconds
// or as an HTTP date relative to now. It returns 0 when the header is absent,
// unparseable or already in the past.
func ParseRetryAfter(val string, now time.Time) time.Duration {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	at, err := http.ParseTime(val)
	if err != nil || !at.After(now) {
		return 0
	}
	return at.Sub(now)
}
