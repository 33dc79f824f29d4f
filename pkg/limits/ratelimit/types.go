package ratelimit

import "time"

// Result reports the outcome of recording one event against a key's quota.
type Result struct {
	// Allowed is false when the post-insert event count exceeds the quota.
	Allowed bool

	// Limit is the quota the key was evaluated against.
	Limit int

	// Remaining is how many further events the window can absorb, never
	// negative.
	Remaining int

	// RetryAfter is a hint for rejected callers: the window length rounded
	// up to whole seconds. Zero when Allowed is true.
	RetryAfter time.Duration
}

// Hitter is the narrow surface the admission gate depends on. Counter
// satisfies it; a distributed counter backed by a shared store could too.
type Hitter interface {
	Hit(key string, window time.Duration, max int) Result
}
