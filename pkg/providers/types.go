package providers

import "time"

// Message is a single message in a conversation.
type Message struct {
	// Role identifies the sender: system, user, or assistant.
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionRequest is a provider-agnostic completion request.
type CompletionRequest struct {
	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model"`

	// Messages is the conversation to complete.
	Messages []Message `json:"messages"`

	// Temperature controls randomness (0.0 to 2.0).
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens bounds the generated completion length.
	MaxTokens int `json:"max_tokens,omitempty"`

	// JSONResponse asks the provider to emit a single JSON object.
	JSONResponse bool `json:"-"`
}

// CompletionResponse is a normalized completion result.
type CompletionResponse struct {
	// Content is the generated text (a JSON object string when the request
	// set JSONResponse).
	Content string

	// Model is the model that produced the completion.
	Model string

	// Usage is the provider-reported token accounting, when available.
	Usage TokenUsage
}

// Config configures an HTTP provider adapter.
type Config struct {
	// Name identifies the provider in logs and errors.
	Name string

	// BaseURL is the API root (e.g. "https://api.openai.com/v1").
	BaseURL string

	// APIKey authenticates requests.
	APIKey string

	// Timeout bounds each request end to end. The generation call must
	// never block indefinitely; a zero value gets a 60s default.
	Timeout time.Duration

	// MaxIdleConns and IdleConnTimeout tune the connection pool.
	MaxIdleConns    int
	IdleConnTimeout time.Duration
}
