package admission

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"daybook-hq/daybook/pkg/telemetry/logging"
	"daybook-hq/daybook/pkg/telemetry/metrics"
)

// Middleware gates every request through the admission decision.
//
// On rejection it writes 429 with a machine-readable reason, Retry-After,
// and the X-RateLimit-* pair. On admission it attaches the same pair so
// clients can tune their backoff, then passes through. OPTIONS preflight
// requests bypass the gate.
func Middleware(gate *Gate, logger *logging.Logger, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			identity := ClientIP(r)
			decision := gate.Admit(identity, r.URL.Path)

			if collector != nil {
				collector.RecordAdmission(decision.Rule, decision.Allowed)
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				logger.InfoContext(r.Context(), "request rate limited",
					"identity", identity,
					"rule", decision.Rule,
					"path", r.URL.Path,
				)

				retryAfter := int(decision.RetryAfter.Seconds())
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":               "rate_limited",
					"message":             "Too many requests. Please slow down.",
					"retry_after_seconds": retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the caller identity from trusted network-layer hints:
// the first hop of X-Forwarded-For when a proxy set it, otherwise the
// connection's remote address.
func ClientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		if first, _, ok := strings.Cut(xf, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xf)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
