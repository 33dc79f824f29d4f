// Package scheduler runs the weekly reflection sweep on a cron schedule.
//
// The sweep finds every user with at least one entry in the current week and
// runs the reflection coordinator for each. Users whose reflection already
// exists, or who are inside cooldown or out of budget, resolve as cached or
// denied outcomes; only genuine failures are logged as errors. The sweep is
// safe to run concurrently with user-triggered runs because the coordinator
// reconciles duplicates at the store's uniqueness constraint.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"daybook-hq/daybook/pkg/period"
	"daybook-hq/daybook/pkg/reflection"
	"daybook-hq/daybook/pkg/store"
	"daybook-hq/daybook/pkg/telemetry/logging"
)

// Scheduler triggers the weekly sweep at scheduled times.
type Scheduler struct {
	spec        string
	store       store.Store
	coordinator *reflection.Coordinator
	cron        *cron.Cron
	logger      *logging.Logger

	mu      sync.Mutex
	running bool

	// now is swappable for tests.
	now func() time.Time
}

// New creates a scheduler with the given cron expression.
func New(spec string, s store.Store, c *reflection.Coordinator, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		spec:        spec,
		store:       s,
		coordinator: c,
		cron:        cron.New(),
		logger:      logger.With("component", "scheduler"),
		now:         time.Now,
	}
}

// Start begins scheduled sweeps. An empty spec disables the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spec == "" {
		s.logger.Info("sweep schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.spec, err)
	}

	if _, err := s.cron.AddFunc(s.spec, func() {
		s.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("sweep scheduler started", "schedule", s.spec)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Sweep runs the coordinator for every user active in the current week and
// returns the outcome tally keyed by status.
func (s *Scheduler) Sweep(ctx context.Context) map[reflection.Status]int {
	now := s.now()
	from := period.WeekStart(now)
	to := period.WeekEnd(now)

	users, err := s.store.ActiveUsers(ctx, from, to)
	if err != nil {
		s.logger.Error("sweep aborted, active user lookup failed", "error", err)
		return nil
	}

	s.logger.Info("starting weekly sweep", "week_start", period.WeekKey(now), "users", len(users))

	tally := make(map[reflection.Status]int)
	for _, userID := range users {
		if ctx.Err() != nil {
			s.logger.Info("sweep cancelled", "completed", len(tally))
			return tally
		}
		out := s.coordinator.Run(ctx, userID)
		tally[out.Status]++
	}

	s.logger.Info("weekly sweep completed",
		"executed", tally[reflection.StatusExecuted],
		"cached", tally[reflection.StatusCached],
		"denied", tally[reflection.StatusDenied],
		"failed", tally[reflection.StatusFailed],
	)
	return tally
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.running = false
		s.logger.Info("sweep scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled sweep time, or nil when idle.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
