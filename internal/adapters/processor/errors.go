package processor

import "fmt"

// ProcessorError wraps a failure response from the external payment rail.
type ProcessorError struct {
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor error: %s (code: %s, status: %d)", e.Message, e.Code, e.StatusCode)
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether retrying the same request could succeed.
// Server-side failures and rate limits are retryable; declines are not.
func (e *ProcessorError) IsRetryable() bool {
	if e.StatusCode >= 500 || e.StatusCode == 429 {
		return true
	}
	switch e.Code {
	case "internal_error", "rate_limited", "temporarily_unavailable":
		return true
	}
	return false
}

type processorErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
