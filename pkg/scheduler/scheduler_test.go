package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"daybook-hq/daybook/pkg/period"
	"daybook-hq/daybook/pkg/providers"
	"daybook-hq/daybook/pkg/reflection"
	"daybook-hq/daybook/pkg/store"
	"daybook-hq/daybook/pkg/telemetry/logging"
)

type sweepProvider struct{}

func (sweepProvider) SendCompletion(_ context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	return &providers.CompletionResponse{
		Content: `{"summary":"a week","highlights":[],"mood":null}`,
		Model:   req.Model,
	}, nil
}

func (sweepProvider) GetName() string { return "sweep" }
func (sweepProvider) Close() error    { return nil }

func sweepLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.New(logging.Config{Level: "error", Format: "json", Writer: io.Discard})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	return logger
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	logger := sweepLogger(t)
	coordinator := reflection.NewCoordinator(st, sweepProvider{}, reflection.Config{}, logger, nil)

	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	s := New("0 18 * * 0", st, coordinator, logger)
	s.now = func() time.Time { return now }

	// Two users active this week, one inactive last week.
	seed := func(userID string, at time.Time) {
		t.Helper()
		err := st.InsertEntry(ctx, &store.Entry{
			ID:        userID + "-" + at.Format("2006-01-02"),
			UserID:    userID,
			Content:   "entry",
			Day:       period.DayKey(at),
			CreatedAt: at,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	seed("active-1", now.Add(-24*time.Hour))
	seed("active-2", now.Add(-2*time.Hour))
	seed("stale", now.Add(-10*24*time.Hour))

	// active-2 already has this week's reflection.
	err := st.InsertReflection(ctx, &store.Reflection{
		ID:        "r1",
		UserID:    "active-2",
		WeekStart: period.WeekKey(now),
		Summary:   "existing",
	})
	if err != nil {
		t.Fatalf("seed reflection: %v", err)
	}

	tally := s.Sweep(ctx)
	if tally[reflection.StatusExecuted] != 1 {
		t.Errorf("executed = %d, want 1", tally[reflection.StatusExecuted])
	}
	if tally[reflection.StatusCached] != 1 {
		t.Errorf("cached = %d, want 1", tally[reflection.StatusCached])
	}
	if total := tally[reflection.StatusExecuted] + tally[reflection.StatusCached] +
		tally[reflection.StatusDenied] + tally[reflection.StatusFailed]; total != 2 {
		t.Errorf("total outcomes = %d, want 2 (stale user must be skipped)", total)
	}

	// The fresh reflection is durable.
	if _, err := st.Reflection(ctx, "active-1", period.WeekKey(now)); err != nil {
		t.Errorf("reflection for active-1 missing: %v", err)
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	st := store.NewMemoryStore()
	logger := sweepLogger(t)
	coordinator := reflection.NewCoordinator(st, sweepProvider{}, reflection.Config{}, logger, nil)

	s := New("not a spec", st, coordinator, logger)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestStart_EmptySpecDisables(t *testing.T) {
	st := store.NewMemoryStore()
	logger := sweepLogger(t)
	coordinator := reflection.NewCoordinator(st, sweepProvider{}, reflection.Config{}, logger, nil)

	s := New("", st, coordinator, logger)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler running with empty spec")
	}
}

func TestStartStop(t *testing.T) {
	st := store.NewMemoryStore()
	logger := sweepLogger(t)
	coordinator := reflection.NewCoordinator(st, sweepProvider{}, reflection.Config{}, logger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New("0 18 * * 0", st, coordinator, logger)
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("scheduler not running after Start")
	}
	if s.NextRun() == nil {
		t.Error("NextRun = nil for a running scheduler")
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler still running after Stop")
	}
}
