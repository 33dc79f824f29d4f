// Package telemetry groups Daybook's observability concerns.
//
//   - logging: slog-backed structured logging with context field extraction
//   - metrics: Prometheus metrics for requests, admission decisions, and
//     reflection job outcomes
//
// Both are dependency-injected; nothing here touches global state, so tests
// can run with a discard logger and a fresh metrics registry.
package telemetry
