package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxErrorBody bounds how much of an upstream error body is kept in errors.
const maxErrorBody = 500

// HTTPProvider is the shared base for HTTP provider adapters. It owns the
// pooled client and the request/response plumbing; concrete adapters embed
// it and implement Provider.
//
// A request is attempted exactly once. Transient upstream failures surface
// as typed errors for the caller to classify; the weekly job's cooldown is
// the retry mechanism, so stacking backoff here would multiply cost.
type HTTPProvider struct {
	config Config
	client *http.Client
}

// NewHTTPProvider creates the base with a pooled HTTP client.
func NewHTTPProvider(config Config) *HTTPProvider {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 10
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:      config.MaxIdleConns,
		IdleConnTimeout:   config.IdleConnTimeout,
		ForceAttemptHTTP2: true,
	}

	return &HTTPProvider{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}
}

// GetName returns the provider's configured name.
func (p *HTTPProvider) GetName() string { return p.config.Name }

// GetConfig returns the provider's configuration.
func (p *HTTPProvider) GetConfig() Config { return p.config }

// DoJSONRequest marshals reqBody, performs one POST-style request, and
// decodes a 2xx response into respBody. Non-2xx statuses map to typed
// errors.
func (p *HTTPProvider) DoJSONRequest(ctx context.Context, method, url string, reqBody, respBody any, headers map[string]string) error {
	var bodyReader io.Reader
	if reqBody != nil {
		bodyBytes, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
		}
		return &ProviderError{Provider: p.config.Name, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Provider: p.config.Name, Message: string(errorBody)}
		case http.StatusTooManyRequests:
			return &RateLimitError{
				Provider:   p.config.Name,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    string(errorBody),
			}
		default:
			return &ProviderError{
				Provider:   p.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}
		}
	}

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{
			Provider: p.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    p.config.Name,
				RawResponse: truncate(string(responseBytes), maxErrorBody),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}
	return nil
}

// Close releases pooled connections.
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	for e := err; e != nil; {
		if t, ok := e.(timeout); ok && t.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		e = u.Unwrap()
	}
	return false
}

// parseRetryAfter parses a Retry-After header in either delay-seconds or
// HTTP-date form.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
