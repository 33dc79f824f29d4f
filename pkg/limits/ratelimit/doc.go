// Package ratelimit implements the sliding-window counter that backs
// Daybook's admission control.
//
// The counter tracks the timestamps of recent events per key and answers a
// single question: does recording one more event now exceed the key's quota
// for the trailing window? Unlike fixed windows, a sliding window has no
// reset boundary a caller can burst across.
//
// # Recording semantics
//
// A hit is recorded unconditionally, before the limit is evaluated. A
// rejected request still consumes a slot, so a caller cannot probe the limit
// for free with rejected requests. This matches the fixed-count sliding
// window policy, not a leaky bucket.
//
// # Scope
//
// The counter is process-local in-memory state. Separate instances of the
// service maintain separate counters, so a multi-instance deployment gets
// per-instance rather than global quotas. That is an accepted trade-off for
// a guardrail limiter; the Counter satisfies a narrow interface so a
// shared-store implementation can replace it without touching callers.
package ratelimit
