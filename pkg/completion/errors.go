package completion

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAPIKeyRequired    = errors.New("API key is required")
	ErrNoMessages        = errors.New("at least one message is required")
	ErrNoChoices         = errors.New("completion returned no choices")
	ErrProvider          = errors.New("completion provider request failed")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// ProviderError describes a failed call to the chat completions API.
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
		return fmt.Sprintf("completion provider: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("completion provider: status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("completion provider: status %d", e.StatusCode)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrProvider:
		return true
	case ErrRateLimitExceeded:
		return e.StatusCode == http.StatusTooManyRequests || e.Code == "rate_limit_exceeded"
	}
	return false
}
