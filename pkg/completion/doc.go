// Package completion calls an OpenAI compatible chat completions endpoint.
//
// Complete returns the first choice as a prompt.Message together with the raw
// response body so callers can log exactly what the provider sent back.
// Failures are *ProviderError values that match ErrProvider, and
// ErrRateLimitExceeded for HTTP 429.
package completion
