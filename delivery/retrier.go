package delivery

import (
	"net/http"
	"time"
)

// Decision is the outcome of evaluating a delivery attempt.
type Decision int

const (
	// Delivered means the receiver answered 2xx.
	Delivered Decision = iota

	// Retry means the attempt should be repeated after a backoff.
	Retry

	// Failed means the chain ends without success.
	Failed
)

// String returns the lowercase decision name used in metrics.
func (d Decision) String() string {
	switch d {
	case Delivered:
		return "delivered"
	case Retry:
		return "retried"
	default:
		return "failed"
	}
}

// Result holds the outcome of a single delivery attempt.
type Result struct {
	StatusCode int
	Error      string
	Response   string
	LatencyMs  int64
}

// Success reports whether the receiver answered 2xx.
func (r Result) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Retrier decides what to do after a delivery attempt.
type Retrier struct{}

// NewRetrier creates a retrier.
func NewRetrier() *Retrier {
	return &Retrier{}
}

// Decide determines what to do after attempt number attempt of a chain
// bounded by maxRetries attempts.
//
// Decision matrix:
//   - 2xx → Delivered
//   - 0 (connection/timeout error), 5xx, 408, 429 → Retry if attempt < maxRetries, else Failed
//   - any other status → Failed
func (r *Retrier) Decide(res Result, attempt, maxRetries int) Decision {
	if res.Success() {
		return Delivered
	}
	if attempt < maxRetries && Retryable(res.StatusCode) {
		return Retry
	}
	return Failed
}

// Retryable reports whether a status code may succeed on a later attempt.
func Retryable(code int) bool {
	return code == 0 ||
		code >= 500 ||
		code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests
}

// Backoff returns the wait before the attempt following attempt:
// retryDelay·2^(attempt-1) milliseconds.
func (r *Retrier) Backoff(retryDelayMs, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(retryDelayMs) * time.Millisecond << (attempt - 1)
}

// ComputeNextAttempt returns the due time of the attempt following attempt.
func (r *Retrier) ComputeNextAttempt(now time.Time, retryDelayMs, attempt int) time.Time {
	return now.UTC().Add(r.Backoff(retryDelayMs, attempt))
}
