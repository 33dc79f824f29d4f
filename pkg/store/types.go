// Package store persists Daybook's journal entries, weekly reflections, and
// usage counters.
//
// Two backends implement the Store interface: an in-memory store for tests
// and single-process development, and a SQLite store for durable
// single-instance deployments.
//
// # Insert-if-absent
//
// InsertEntry and InsertReflection are conditional inserts: when a row for
// the same natural key already exists, they return ErrAlreadyExists and leave
// the stored row untouched. The uniqueness check is atomic within the
// backend, which makes it the arbiter of "first writer wins" for concurrent
// reflection jobs. Callers must branch on the typed sentinel, never on error
// text.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyExists reports a conditional insert that lost to an existing row
// with the same natural key. It is an expected outcome, not a failure.
var ErrAlreadyExists = errors.New("store: row already exists")

// ErrNotFound reports a point lookup that matched no row.
var ErrNotFound = errors.New("store: not found")

// Entry is one journal entry. Users write at most one per UTC day.
type Entry struct {
	ID      string
	UserID  string
	Content string

	// Day is the UTC calendar date ("2006-01-02") the entry belongs to.
	// (UserID, Day) is unique.
	Day string

	CreatedAt time.Time
}

// Reflection is the durable result of one successful weekly generation.
// Rows are immutable once written; a duplicate insert for the same
// (UserID, WeekStart) fails with ErrAlreadyExists rather than overwriting.
type Reflection struct {
	ID     string
	UserID string

	// WeekStart is the Monday of the summarized week ("2006-01-02").
	// (UserID, WeekStart) is unique.
	WeekStart string

	Summary    string
	Highlights []string
	Mood       *MoodRollup

	// EntriesFrom and EntriesTo bound the source entries' time range.
	EntriesFrom time.Time
	EntriesTo   time.Time

	GeneratedAt time.Time
}

// MoodRollup is the provider's aggregate mood estimate for a week.
type MoodRollup struct {
	AvgValence float64  `json:"avg_valence"`
	TopLabels  []string `json:"top_labels"`
}

// Usage is the per-user, per-month accounting record for reflection runs.
// Only successful executions are counted.
type Usage struct {
	UserID string

	// Month is the accounting period ("2006-01").
	Month string

	Runs    int
	LastRun time.Time
}

// Store is the durable storage collaborator.
type Store interface {
	// InsertEntry stores a new entry, or returns ErrAlreadyExists when the
	// user already has an entry for the same day.
	InsertEntry(ctx context.Context, e *Entry) error

	// EntriesBetween returns the user's entries with CreatedAt in [from, to),
	// ordered ascending by CreatedAt.
	EntriesBetween(ctx context.Context, userID string, from, to time.Time) ([]Entry, error)

	// InsertReflection stores a new reflection, or returns ErrAlreadyExists
	// when one exists for the same (user, week).
	InsertReflection(ctx context.Context, r *Reflection) error

	// Reflection returns the reflection for (user, week), or ErrNotFound.
	Reflection(ctx context.Context, userID, weekStart string) (*Reflection, error)

	// Reflections returns all of a user's reflections, newest week first.
	Reflections(ctx context.Context, userID string) ([]Reflection, error)

	// Usage returns the usage counter for (user, month). A missing row is
	// not an error; it returns a zero-valued Usage.
	Usage(ctx context.Context, userID, month string) (Usage, error)

	// RecordRun increments the run counter for (user, month) and sets the
	// last-run timestamp, creating the row if needed.
	RecordRun(ctx context.Context, userID, month string, at time.Time) error

	// LastRun returns the user's most recent successful run across all
	// months, or the zero time when the user has never run. Cooldown checks
	// use this so a run late in one month still throttles early the next.
	LastRun(ctx context.Context, userID string) (time.Time, error)

	// ActiveUsers returns the distinct users with at least one entry whose
	// CreatedAt falls in [from, to).
	ActiveUsers(ctx context.Context, from, to time.Time) ([]string, error)

	// Close releases backend resources.
	Close() error
}
