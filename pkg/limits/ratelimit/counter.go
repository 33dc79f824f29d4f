package ratelimit

import (
	"sync"
	"time"
)

// Counter is a process-local sliding-window event counter keyed by string.
//
// Each key owns a time-ordered bucket of event timestamps within the trailing
// window. Buckets are pruned lazily on every hit and swept periodically so
// that idle keys do not accumulate forever.
//
// Counter is safe for concurrent use. The read-prune-append sequence for a
// hit runs under one lock, so two concurrent hits on the same key can never
// both observe the pre-insert count.
type Counter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time

	// now is the clock; replaced in tests.
	now func() time.Time

	sweepEvery time.Duration
	done       chan struct{}
	closeOnce  sync.Once
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{
		buckets:    make(map[string][]time.Time),
		now:        time.Now,
		sweepEvery: time.Minute,
		done:       make(chan struct{}),
	}
}

// Hit records one event for key, prunes entries older than window, and
// evaluates the post-insert count against max.
//
// Recording happens before the check: a rejected hit still occupies a slot
// in the window. window must be positive and max at least 1; both are
// enforced by config validation upstream.
func (c *Counter) Hit(key string, window time.Duration, max int) Result {
	now := c.now()
	cutoff := now.Add(-window)

	c.mu.Lock()
	defer c.mu.Unlock()

	bucket := c.buckets[key]

	// Entries are appended in time order, so everything expired sits at the
	// front.
	i := 0
	for i < len(bucket) && !bucket[i].After(cutoff) {
		i++
	}
	bucket = append(bucket[i:], now)
	c.buckets[key] = bucket

	count := len(bucket)
	remaining := max - count
	if remaining < 0 {
		remaining = 0
	}

	if count > max {
		return Result{
			Allowed:    false,
			Limit:      max,
			Remaining:  remaining,
			RetryAfter: ceilSeconds(window),
		}
	}
	return Result{
		Allowed:   true,
		Limit:     max,
		Remaining: remaining,
	}
}

// Len reports the number of tracked keys. Intended for tests and metrics.
func (c *Counter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets)
}

// StartSweeper launches a background goroutine that periodically drops keys
// whose buckets hold no live entries. Without the sweep, every key ever seen
// would stay resident; with it, memory is bounded by the set of keys active
// within maxWindow.
//
// maxWindow must cover the longest window any rule uses; entries younger
// than maxWindow are never swept. Call Close to stop the sweeper.
func (c *Counter) StartSweeper(maxWindow time.Duration) {
	go func() {
		ticker := time.NewTicker(c.sweepEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.sweep(maxWindow)
			case <-c.done:
				return
			}
		}
	}()
}

// sweep removes keys with no entries younger than maxWindow.
func (c *Counter) sweep(maxWindow time.Duration) {
	cutoff := c.now().Add(-maxWindow)

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, bucket := range c.buckets {
		live := false
		for _, ts := range bucket {
			if ts.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(c.buckets, key)
		}
	}
}

// Close stops the sweeper goroutine. Safe to call multiple times.
func (c *Counter) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// ceilSeconds rounds d up to whole seconds for Retry-After hints.
func ceilSeconds(d time.Duration) time.Duration {
	if r := d % time.Second; r != 0 {
		return d - r + time.Second
	}
	return d
}
