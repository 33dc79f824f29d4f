package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"daybook-hq/daybook/pkg/telemetry/logging"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestIDMiddleware assigns each request a UUID, exposed both in the
// response header and the logging context.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// loggingMiddleware logs each request and feeds the request metrics. The
// route label uses the chi route pattern, not the raw path, to keep metric
// cardinality bounded.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}

		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordRequest(route, strconv.Itoa(rec.status), duration)
		}
		s.deps.Logger.InfoContext(r.Context(), "request completed",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", duration,
		)
	})
}

// recoveryMiddleware converts handler panics into 500 responses.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.deps.Logger.ErrorContext(r.Context(), "panic recovered",
					"panic", rec, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, "internal", "Internal server error.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
