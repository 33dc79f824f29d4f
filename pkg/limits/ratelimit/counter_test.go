package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock hands out a controllable time to the counter.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{t: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestCounter(clock *fakeClock) *Counter {
	c := NewCounter()
	c.now = clock.Now
	return c
}

func TestCounter_AllowsUpToMax(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c := newTestCounter(clock)

	for i := 0; i < 5; i++ {
		res := c.Hit("k", time.Minute, 5)
		if !res.Allowed {
			t.Fatalf("hit %d rejected, want allowed", i+1)
		}
		if want := 5 - (i + 1); res.Remaining != want {
			t.Errorf("hit %d: remaining = %d, want %d", i+1, res.Remaining, want)
		}
		clock.Advance(time.Second)
	}

	res := c.Hit("k", time.Minute, 5)
	if res.Allowed {
		t.Error("sixth hit allowed, want rejected")
	}
	if res.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", res.Remaining)
	}
}

func TestCounter_ScenarioThreeHitsMaxTwo(t *testing.T) {
	// max=2, window=60s, three calls within 5 seconds: allow, allow, reject
	// with remaining=0 and retry-after 60s.
	clock := newFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c := newTestCounter(clock)

	want := []bool{true, true, false}
	var last Result
	for i, w := range want {
		last = c.Hit("ip1::weekly", 60*time.Second, 2)
		if last.Allowed != w {
			t.Fatalf("hit %d: allowed = %v, want %v", i+1, last.Allowed, w)
		}
		clock.Advance(2 * time.Second)
	}

	if last.Remaining != 0 {
		t.Errorf("third hit remaining = %d, want 0", last.Remaining)
	}
	if last.RetryAfter != 60*time.Second {
		t.Errorf("third hit retryAfter = %v, want 60s", last.RetryAfter)
	}
}

func TestCounter_WindowSlides(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c := newTestCounter(clock)

	c.Hit("k", 10*time.Second, 2)
	c.Hit("k", 10*time.Second, 2)

	if res := c.Hit("k", 10*time.Second, 2); res.Allowed {
		t.Fatal("third hit inside window allowed, want rejected")
	}

	// After the window passes, old entries (including the rejected one) fall
	// out and capacity returns.
	clock.Advance(11 * time.Second)
	if res := c.Hit("k", 10*time.Second, 2); !res.Allowed {
		t.Error("hit after window expiry rejected, want allowed")
	}
}

func TestCounter_RejectedHitConsumesSlot(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c := newTestCounter(clock)

	c.Hit("k", time.Minute, 1)

	// Repeated rejected hits keep refreshing the window; the key never frees
	// up while the caller keeps hammering.
	for i := 0; i < 3; i++ {
		clock.Advance(30 * time.Second)
		if res := c.Hit("k", time.Minute, 1); res.Allowed {
			t.Fatalf("hit %d allowed, want rejected (rejected hits consume slots)", i)
		}
	}
}

func TestCounter_KeysAreIsolated(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c := newTestCounter(clock)

	c.Hit("a", time.Minute, 1)
	if res := c.Hit("a", time.Minute, 1); res.Allowed {
		t.Error("second hit on exhausted key allowed")
	}
	if res := c.Hit("b", time.Minute, 1); !res.Allowed {
		t.Error("hit on fresh key rejected")
	}
}

func TestCounter_InvariantUnderLoad(t *testing.T) {
	// Property from the design: in any trailing window, the number of allowed
	// hits never exceeds max.
	clock := newFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c := newTestCounter(clock)

	const (
		window = 30 * time.Second
		max    = 10
	)

	type event struct {
		at      time.Time
		allowed bool
	}
	var events []event

	for i := 0; i < 500; i++ {
		res := c.Hit("k", window, max)
		events = append(events, event{at: clock.Now(), allowed: res.Allowed})
		clock.Advance(time.Duration(i%7) * time.Second)
	}

	for i, e := range events {
		if !e.allowed {
			continue
		}
		allowedInWindow := 0
		for j := i; j >= 0; j-- {
			if e.at.Sub(events[j].at) >= window {
				break
			}
			if events[j].allowed {
				allowedInWindow++
			}
		}
		if allowedInWindow > max {
			t.Fatalf("window ending at event %d contains %d allowed hits, max %d", i, allowedInWindow, max)
		}
	}
}

func TestCounter_ConcurrentHitsSerialize(t *testing.T) {
	c := NewCounter()

	const (
		goroutines = 50
		max        = 20
	)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := c.Hit("k", time.Minute, max)
			if res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != max {
		t.Errorf("%d hits allowed, want exactly %d", allowed, max)
	}
}

func TestCounter_SweepDropsIdleKeys(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c := newTestCounter(clock)

	for i := 0; i < 10; i++ {
		c.Hit(fmt.Sprintf("k%d", i), time.Minute, 5)
	}
	if got := c.Len(); got != 10 {
		t.Fatalf("tracked keys = %d, want 10", got)
	}

	clock.Advance(2 * time.Minute)
	c.Hit("fresh", time.Minute, 5)
	c.sweep(time.Minute)

	if got := c.Len(); got != 1 {
		t.Errorf("tracked keys after sweep = %d, want 1", got)
	}
}

func TestCeilSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{time.Minute, time.Minute},
		{1500 * time.Millisecond, 2 * time.Second},
		{time.Millisecond, time.Second},
	}
	for _, tt := range tests {
		if got := ceilSeconds(tt.in); got != tt.want {
			t.Errorf("ceilSeconds(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
