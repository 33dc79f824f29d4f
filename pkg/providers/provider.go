// Package providers defines the text-generation collaborator used for weekly
// reflections, plus a shared HTTP base for concrete adapters.
//
// The core treats a provider as an opaque, potentially slow, potentially
// failing remote call. Every request is bounded by the configured timeout and
// made exactly once: retry policy belongs to the caller's cooldown gating,
// not to this layer.
package providers

import "context"

// Provider is the interface all text-generation adapters implement.
//
// Implementations must respect context cancellation and return promptly when
// the context is cancelled or the configured timeout elapses.
type Provider interface {
	// SendCompletion sends one completion request and returns the
	// normalized response. Errors are typed: AuthError, RateLimitError,
	// TimeoutError, ParseError, or ProviderError.
	SendCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// GetName returns the provider's configured name (e.g. "openai").
	GetName() string

	// Close releases pooled connections. The provider must not be used
	// after Close.
	Close() error
}
