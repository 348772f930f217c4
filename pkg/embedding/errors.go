package embedding

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrProviderNotSet        = errors.New("embedding provider not set")
	ErrCounterNotSet         = errors.New("token counter not set")
	ErrAPIKeyRequired        = errors.New("API key is required")
	ErrProvider              = errors.New("embedding provider request failed")
	ErrRateLimitExceeded     = errors.New("rate limit exceeded")
	ErrContextLengthExceeded = errors.New("text exceeds maximum context length")
	ErrVectorCountMismatch   = errors.New("provider returned a different number of vectors than inputs")
	ErrTokenCountMismatch    = errors.New("token counts do not match texts")
	ErrInvalidTokenLimit     = errors.New("token limit must be positive")
	ErrInvalidCacheSize      = errors.New("cache size must be positive")
)

// ProviderError describes a failed call to the embedding API.
// StatusCode is zero when the request never got a response.
type ProviderError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("embedding provider: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("embedding provider: status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("embedding provider: status %d", e.StatusCode)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches ErrProvider for every provider failure, and the rate limit and
// context length sentinels for the corresponding API errors.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrProvider:
		return true
	case ErrRateLimitExceeded:
		return e.StatusCode == http.StatusTooManyRequests || e.Code == "rate_limit_exceeded"
	case ErrContextLengthExceeded:
		return e.Code == "context_length_exceeded"
	}
	return false
}

// IsRetryable reports whether err is a rate limit or a provider side (5xx) failure.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimitExceeded) {
		return true
	}
	var pe *ProviderError
	return errors.As(err, &pe) && pe.StatusCode >= http.StatusInternalServerError
}
