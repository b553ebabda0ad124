package trackjs

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// TransportErrorKind distinguishes connectivity-level failures from each
// other.
type TransportErrorKind string

const (
	TransportNetwork TransportErrorKind = "network"
	TransportTimeout TransportErrorKind = "timeout"
)

// TransportError means the capture request never received an HTTP response.
// Transport failures are never retried.
type TransportError struct {
	Kind TransportErrorKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("capture transport failure (%s): %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError means the capture endpoint answered with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("capture endpoint returned status %d", e.StatusCode)
}

// RateLimited reports whether this status is the rolling-quota 429, the only
// failure the retry policy may retry.
func (e *HTTPStatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// RetriesExhaustedError means every configured attempt was answered with a
// 429. Last carries the final status failure.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("rate limited after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Last }

// IsRateLimited reports whether err is, or wraps, a 429 status failure.
func IsRateLimited(err error) bool {
	statusErr, ok := errors.Cause(err).(*HTTPStatusError)
	return ok && statusErr.RateLimited()
}

// IsRetriesExhausted reports whether err is, or wraps, a terminal
// rate-limit exhaustion.
func IsRetriesExhausted(err error) bool {
	_, ok := errors.Cause(err).(*RetriesExhaustedError)
	return ok
}
