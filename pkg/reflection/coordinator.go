package reflection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"daybook-hq/daybook/pkg/period"
	"daybook-hq/daybook/pkg/providers"
	"daybook-hq/daybook/pkg/store"
	"daybook-hq/daybook/pkg/telemetry/logging"
	"daybook-hq/daybook/pkg/telemetry/metrics"
)

// Defaults applied by NewCoordinator when the corresponding Config field is
// zero.
const (
	DefaultModel          = "gpt-4o-mini"
	DefaultCooldown       = time.Hour
	DefaultMonthlyLimit   = 30
	DefaultMaxPromptBytes = 5000
	DefaultMaxTokens      = 700
)

// Config tunes the coordinator's gating and generation parameters.
type Config struct {
	// Model is the generation model identifier.
	Model string `yaml:"model"`

	// Temperature is passed through to the provider.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens bounds the generated completion.
	MaxTokens int `yaml:"max_tokens"`

	// Cooldown is the minimum gap between two successful generations for the
	// same user, across all weeks.
	Cooldown time.Duration `yaml:"cooldown"`

	// MonthlyLimit caps successful generations per user per calendar month.
	MonthlyLimit int `yaml:"monthly_limit"`

	// MaxPromptBytes caps the entry text sent upstream.
	MaxPromptBytes int `yaml:"max_prompt_bytes"`
}

// Coordinator owns the run/deny/cache decision for weekly reflection jobs.
type Coordinator struct {
	store    store.Store
	provider providers.Provider
	config   Config
	logger   *logging.Logger
	metrics  *metrics.Collector

	// now is swappable for tests.
	now func() time.Time
}

// NewCoordinator creates a coordinator. Zero-valued config fields get
// defaults.
func NewCoordinator(s store.Store, p providers.Provider, cfg Config, logger *logging.Logger, collector *metrics.Collector) *Coordinator {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.MonthlyLimit == 0 {
		cfg.MonthlyLimit = DefaultMonthlyLimit
	}
	if cfg.MaxPromptBytes == 0 {
		cfg.MaxPromptBytes = DefaultMaxPromptBytes
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &Coordinator{
		store:    s,
		provider: p,
		config:   cfg,
		logger:   logger,
		metrics:  collector,
		now:      time.Now,
	}
}

// reflectionJSON is the shape the provider is instructed to return.
type reflectionJSON struct {
	Summary    string            `json:"summary"`
	Highlights []string          `json:"highlights"`
	Mood       *store.MoodRollup `json:"mood"`
}

// Run executes one weekly reflection job for the user, for the week
// containing the current time.
//
// Any step before the final insert can race with a concurrent run for the
// same user and week; the insert's uniqueness constraint is the sole arbiter,
// and losing it is converted into a cached outcome.
func (c *Coordinator) Run(ctx context.Context, userID string) Outcome {
	started := c.now()
	out := c.run(ctx, userID, started)

	var duration time.Duration
	if out.Status == StatusExecuted {
		duration = c.now().Sub(started)
	}
	if c.metrics != nil {
		c.metrics.RecordReflection(string(out.Status), string(out.Reason), duration)
	}

	switch out.Status {
	case StatusExecuted:
		c.logger.InfoContext(ctx, "reflection generated",
			"user_id", userID, "week_start", out.Reflection.WeekStart, "duration", duration)
	case StatusDenied:
		c.logger.InfoContext(ctx, "reflection denied",
			"user_id", userID, "reason", out.Reason, "retry_after", out.RetryAfter)
	case StatusFailed:
		c.logger.ErrorContext(ctx, "reflection failed",
			"user_id", userID, "reason", out.Reason, "error", out.Err)
	default:
		c.logger.DebugContext(ctx, "reflection served from cache",
			"user_id", userID, "week_start", out.Reflection.WeekStart)
	}
	return out
}

func (c *Coordinator) run(ctx context.Context, userID string, now time.Time) Outcome {
	weekStart := period.WeekStart(now)
	weekKey := period.WeekKey(now)
	weekEnd := period.WeekEnd(now)

	// Cache check. An existing row makes repeated triggers free.
	existing, err := c.store.Reflection(ctx, userID, weekKey)
	if err == nil {
		return Outcome{Status: StatusCached, Reflection: existing}
	}
	if !errors.Is(err, store.ErrNotFound) {
		return Outcome{Status: StatusFailed, Reason: ReasonStorage, Err: err}
	}

	// Cooldown check, measured from the last successful run in any month.
	lastRun, err := c.store.LastRun(ctx, userID)
	if err != nil {
		return Outcome{Status: StatusFailed, Reason: ReasonStorage, Err: err}
	}
	if !lastRun.IsZero() {
		if elapsed := now.Sub(lastRun); elapsed < c.config.Cooldown {
			return Outcome{
				Status:     StatusDenied,
				Reason:     ReasonCooldown,
				RetryAfter: c.config.Cooldown - elapsed,
			}
		}
	}

	// Budget check for the current calendar month.
	usage, err := c.store.Usage(ctx, userID, period.MonthKey(now))
	if err != nil {
		return Outcome{Status: StatusFailed, Reason: ReasonStorage, Err: err}
	}
	if usage.Runs >= c.config.MonthlyLimit {
		return Outcome{Status: StatusDenied, Reason: ReasonBudget}
	}

	// No-data guard. An empty week never reaches the provider.
	entries, err := c.store.EntriesBetween(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return Outcome{Status: StatusFailed, Reason: ReasonStorage, Err: err}
	}
	if len(entries) == 0 {
		return Outcome{Status: StatusDenied, Reason: ReasonNoData}
	}

	prompt := buildPrompt(entries, c.config.MaxPromptBytes)
	if c.metrics != nil {
		c.metrics.RecordPromptSize(len(prompt))
	}

	// Single attempt. A failure here writes nothing; the cooldown is the
	// retry policy.
	resp, err := c.provider.SendCompletion(ctx, &providers.CompletionRequest{
		Model: c.config.Model,
		Messages: []providers.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:  c.config.Temperature,
		MaxTokens:    c.config.MaxTokens,
		JSONResponse: true,
	})
	if err != nil {
		return Outcome{Status: StatusFailed, Reason: ReasonUpstream, Err: err}
	}

	var parsed reflectionJSON
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return Outcome{
			Status: StatusFailed,
			Reason: ReasonUpstream,
			Err:    fmt.Errorf("malformed reflection payload: %w", err),
		}
	}

	rec := &store.Reflection{
		ID:          uuid.NewString(),
		UserID:      userID,
		WeekStart:   weekKey,
		Summary:     parsed.Summary,
		Highlights:  parsed.Highlights,
		Mood:        parsed.Mood,
		EntriesFrom: weekStart,
		EntriesTo:   weekEnd,
		GeneratedAt: now,
	}

	// The insert is the linchpin: first writer wins, losers re-read.
	if err := c.store.InsertReflection(ctx, rec); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			winner, readErr := c.store.Reflection(ctx, userID, weekKey)
			if readErr != nil {
				return Outcome{Status: StatusFailed, Reason: ReasonStorage, Err: readErr}
			}
			return Outcome{Status: StatusCached, Reflection: winner}
		}
		return Outcome{Status: StatusFailed, Reason: ReasonStorage, Err: err}
	}

	// Usage is bumped only on a fresh insert, so cooldown and budget count
	// successes, never attempts or race losses. The record and the bump are
	// not atomic with each other; a crash between them under-counts by one.
	if err := c.store.RecordRun(ctx, userID, period.MonthKey(now), now); err != nil {
		c.logger.WarnContext(ctx, "usage bump failed after successful insert",
			"user_id", userID, "error", err)
	}

	return Outcome{Status: StatusExecuted, Reflection: rec}
}
