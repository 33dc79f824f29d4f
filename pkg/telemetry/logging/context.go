package logging

import "context"

// contextKey is the private key type for request-scoped log fields.
type contextKey string

const (
	// requestIDKey carries the per-request correlation ID.
	requestIDKey contextKey = "request_id"

	// userKey carries the authenticated user identifier.
	userKey contextKey = "user"
)

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request ID from ctx, or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithUser returns a context carrying the authenticated user ID.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the user ID from ctx, or "".
func GetUser(ctx context.Context) string {
	v, _ := ctx.Value(userKey).(string)
	return v
}

// extractContextFields converts known context values into slog key/value
// pairs for the *Context logging methods.
func extractContextFields(ctx context.Context) []any {
	var fields []any
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, "request_id", id)
	}
	if user := GetUser(ctx); user != "" {
		fields = append(fields, "user", user)
	}
	return fields
}
