// Package openai implements the OpenAI chat-completions adapter.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"daybook-hq/daybook/pkg/providers"
)

// DefaultBaseURL is the OpenAI API root used when the config leaves BaseURL
// empty.
const DefaultBaseURL = "https://api.openai.com/v1"

// Client is the OpenAI provider adapter.
type Client struct {
	*providers.HTTPProvider
}

// New creates an OpenAI client from the given configuration.
func New(config providers.Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if config.Name == "" {
		config.Name = "openai"
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

	return &Client{HTTPProvider: providers.NewHTTPProvider(config)}, nil
}

// chatRequest is the wire form of a chat-completions request.
type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []providers.Message `json:"messages"`
	Temperature    float64             `json:"temperature,omitempty"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat     `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse is the wire form of a chat-completions response.
type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage providers.TokenUsage `json:"usage"`
}

// SendCompletion performs one chat-completions request.
func (c *Client) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	wire := chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONResponse {
		wire.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp chatResponse
	url := c.GetConfig().BaseURL + "/chat/completions"
	headers := map[string]string{
		"Authorization": "Bearer " + c.GetConfig().APIKey,
	}

	if err := c.DoJSONRequest(ctx, http.MethodPost, url, wire, &resp, headers); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, &providers.ParseError{
			Provider: c.GetName(),
			Cause:    fmt.Errorf("response contains no choices"),
		}
	}

	return &providers.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage:   resp.Usage,
	}, nil
}
