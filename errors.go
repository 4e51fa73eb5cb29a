package allscreenshots

import (
	"errors"
	"fmt"
	"time"
)

// Error codes carried by APIError, matching the service's wire values.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeUnknown      = "UNKNOWN_ERROR"
)

// Operation labels for TimeoutError. A "request" timeout is a single
// call exceeding its own deadline and is retry-eligible; a "poll"
// timeout is the awaiter's overall deadline expiring and is terminal.
const (
	TimeoutOpRequest = "request"
	TimeoutOpPoll    = "poll"
)

// ValidationError reports a request that failed builder-time checks.
// It never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// APIError is a structured error returned by the service.
type APIError struct {
	// Code is one of the ErrCode constants.
	Code string

	// Message is the human-readable explanation from the error body.
	Message string

	// Status is the HTTP status code of the response.
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s (status %d): %s", e.Code, e.Status, e.Message)
}

// NetworkError is a connection-level failure before any HTTP status was
// received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError reports an exceeded deadline. Op distinguishes a single
// request timing out (TimeoutOpRequest) from the poller's overall
// deadline expiring (TimeoutOpPoll).
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Op == TimeoutOpPoll {
		return fmt.Sprintf("poll deadline exceeded after %s", e.After)
	}
	return fmt.Sprintf("%s timed out after %s", e.Op, e.After)
}

// JobFailedError is the terminal failure of an asynchronous job,
// reported by the service. Never retried by the poller.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("job %s failed", e.JobID)
	}
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Message)
}

// JobCancelledError reports a job that reached the cancelled state
// while being awaited.
type JobCancelledError struct {
	JobID string
}

func (e *JobCancelledError) Error() string {
	return fmt.Sprintf("job %s was cancelled", e.JobID)
}

// ConfigError reports invalid client construction input, such as a
// missing API key.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Reason
}

// IsRetryable reports whether err is safe to retry with an identical
// request: rate-limit and internal API errors (or any 5xx), network
// failures, and single-request timeouts. Validation errors, auth and
// not-found responses, job outcomes, and poll deadlines are terminal.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == ErrCodeRateLimited || apiErr.Code == ErrCodeInternal {
			return true
		}
		return apiErr.Status >= 500 && apiErr.Status <= 599
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	var toErr *TimeoutError
	if errors.As(err, &toErr) {
		return toErr.Op == TimeoutOpRequest
	}

	return false
}
