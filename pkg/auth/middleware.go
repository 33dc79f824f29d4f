package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"daybook-hq/daybook/pkg/telemetry/logging"
)

type contextKey struct{}

// UserID returns the authenticated user ID stored by Middleware, or "".
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

// withUserID stores the authenticated user on the context for handlers and
// mirrors it into the logging context so every log line carries it.
func withUserID(ctx context.Context, userID string) context.Context {
	ctx = context.WithValue(ctx, contextKey{}, userID)
	return logging.WithUser(ctx, userID)
}

// Middleware rejects unauthenticated requests with 401 and attaches the user
// ID to the request context otherwise.
func Middleware(a Authenticator, logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := a.Authenticate(r)
			if err != nil {
				logger.DebugContext(r.Context(), "authentication rejected",
					"path", r.URL.Path, "error", err)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "unauthorized",
					"message": "A valid session is required.",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}
