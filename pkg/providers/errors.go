package providers

import (
	"fmt"
	"time"
)

// ProviderError is a general provider failure: a non-2xx response that is
// not an auth or rate-limit condition, or a transport error.
type ProviderError struct {
	// Provider is the name of the provider that returned the error.
	Provider string

	// StatusCode is the HTTP status code (0 when not applicable).
	StatusCode int

	// Message is the error detail, truncated to a sane length.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// AuthError reports a rejected API key (HTTP 401 or 403).
type AuthError struct {
	Provider string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// RateLimitError reports an upstream 429, with the provider's retry hint
// when present.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limit exceeded (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limit exceeded: %s", e.Provider, e.Message)
}

// TimeoutError reports a request that exceeded the configured timeout or was
// cancelled.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// ParseError reports a malformed provider response.
type ParseError struct {
	Provider    string
	RawResponse string
	Cause       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }
