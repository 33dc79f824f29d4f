// Package server provides the Daybook HTTP server.
//
// It ties together the admission gate, session auth, the store, and the
// weekly reflection coordinator behind a chi router, and manages server
// lifecycle: start, graceful shutdown, and OS signal handling.
//
// # Routes
//
//   - POST /api/entries: write today's journal entry (one per UTC day)
//   - GET  /api/entries: list entries for a time range (default: this week)
//   - POST /api/weekly: trigger the weekly reflection job
//   - GET  /api/reflections: list past reflections, newest first
//   - GET  /healthz: liveness probe
//   - GET  /readyz: readiness probe (checks the store)
//   - GET  /metrics: Prometheus scrape endpoint (when enabled)
//
// # Middleware chain
//
// Outermost to innermost: recovery, request ID, logging, admission gate.
// Session auth applies to /api/* only, so probes and scrapes never consume
// rate-limit quota nor require a token.
package server
