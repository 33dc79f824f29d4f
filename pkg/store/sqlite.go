package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite for persistence. It is suitable
// for single-instance deployments where journal data must survive restarts.
//
// The database runs in WAL mode with a busy timeout and a single writer
// connection. Uniqueness constraints on (user_id, entry_day) and
// (user_id, week_start) are the durable arbiters behind ErrAlreadyExists.
type SQLiteStore struct {
	db *sql.DB
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (creating if needed) the database at path with
// default settings.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteConfig{Path: path})
}

// NewSQLiteStoreWithConfig opens the database with custom configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		entry_day TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE (user_id, entry_day)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_user_created ON entries(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at);

	CREATE TABLE IF NOT EXISTS reflections (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		week_start TEXT NOT NULL,
		summary TEXT NOT NULL,
		highlights TEXT NOT NULL,
		mood TEXT,
		entries_from INTEGER NOT NULL,
		entries_to INTEGER NOT NULL,
		generated_at INTEGER NOT NULL,
		UNIQUE (user_id, week_start)
	);

	CREATE TABLE IF NOT EXISTS usage_counters (
		user_id TEXT NOT NULL,
		month TEXT NOT NULL,
		runs INTEGER NOT NULL DEFAULT 0,
		last_run INTEGER NOT NULL,
		PRIMARY KEY (user_id, month)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// InsertEntry stores e, or returns ErrAlreadyExists when the user already
// has an entry for e.Day. The UNIQUE constraint decides atomically; a zero
// rows-affected result is the conflict signal, so no error-string inspection
// is involved.
func (s *SQLiteStore) InsertEntry(ctx context.Context, e *Entry) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (id, user_id, content, entry_day, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, entry_day) DO NOTHING`,
		e.ID, e.UserID, e.Content, e.Day, e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// EntriesBetween returns the user's entries in [from, to) ascending.
func (s *SQLiteStore) EntriesBetween(ctx context.Context, userID string, from, to time.Time) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, content, entry_day, created_at
		FROM entries
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at ASC`,
		userID, from.UnixMilli(), to.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &e.Day, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertReflection stores r, or returns ErrAlreadyExists when a reflection
// for (user, week) already exists. This is the linchpin of race resolution:
// the constraint is checked and the row written in one atomic statement.
func (s *SQLiteStore) InsertReflection(ctx context.Context, r *Reflection) error {
	highlights, err := json.Marshal(r.Highlights)
	if err != nil {
		return fmt.Errorf("failed to marshal highlights: %w", err)
	}

	var mood []byte
	if r.Mood != nil {
		mood, err = json.Marshal(r.Mood)
		if err != nil {
			return fmt.Errorf("failed to marshal mood: %w", err)
		}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reflections (id, user_id, week_start, summary, highlights, mood, entries_from, entries_to, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, week_start) DO NOTHING`,
		r.ID, r.UserID, r.WeekStart, r.Summary, string(highlights), nullableString(mood),
		r.EntriesFrom.UnixMilli(), r.EntriesTo.UnixMilli(), r.GeneratedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert reflection: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// Reflection returns the reflection for (user, week), or ErrNotFound.
func (s *SQLiteStore) Reflection(ctx context.Context, userID, weekStart string) (*Reflection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, week_start, summary, highlights, mood, entries_from, entries_to, generated_at
		FROM reflections
		WHERE user_id = ? AND week_start = ?`,
		userID, weekStart,
	)
	return scanReflection(row)
}

// Reflections returns the user's reflections, newest week first.
func (s *SQLiteStore) Reflections(ctx context.Context, userID string) ([]Reflection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, week_start, summary, highlights, mood, entries_from, entries_to, generated_at
		FROM reflections
		WHERE user_id = ?
		ORDER BY week_start DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query reflections: %w", err)
	}
	defer rows.Close()

	var out []Reflection
	for rows.Next() {
		r, err := scanReflection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// Usage returns the counter for (user, month), zero-valued when absent.
func (s *SQLiteStore) Usage(ctx context.Context, userID, month string) (Usage, error) {
	u := Usage{UserID: userID, Month: month}

	var lastRun int64
	err := s.db.QueryRowContext(ctx, `
		SELECT runs, last_run FROM usage_counters WHERE user_id = ? AND month = ?`,
		userID, month,
	).Scan(&u.Runs, &lastRun)
	if err == sql.ErrNoRows {
		return u, nil
	}
	if err != nil {
		return u, fmt.Errorf("failed to query usage: %w", err)
	}
	u.LastRun = time.UnixMilli(lastRun).UTC()
	return u, nil
}

// RecordRun upserts the counter for (user, month), incrementing runs.
func (s *SQLiteStore) RecordRun(ctx context.Context, userID, month string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_counters (user_id, month, runs, last_run)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (user_id, month) DO UPDATE SET
			runs = runs + 1,
			last_run = excluded.last_run`,
		userID, month, at.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// LastRun returns the user's most recent run across all months.
func (s *SQLiteStore) LastRun(ctx context.Context, userID string) (time.Time, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(last_run) FROM usage_counters WHERE user_id = ?`,
		userID,
	).Scan(&last)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query last run: %w", err)
	}
	if !last.Valid {
		return time.Time{}, nil
	}
	return time.UnixMilli(last.Int64).UTC(), nil
}

// ActiveUsers returns distinct users with entries in [from, to).
func (s *SQLiteStore) ActiveUsers(ctx context.Context, from, to time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM entries
		WHERE created_at >= ? AND created_at < ?
		ORDER BY user_id`,
		from.UnixMilli(), to.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Close closes the database after a final WAL checkpoint.
func (s *SQLiteStore) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReflection(row scanner) (*Reflection, error) {
	var (
		r           Reflection
		highlights  string
		mood        sql.NullString
		entriesFrom int64
		entriesTo   int64
		generatedAt int64
	)

	err := row.Scan(&r.ID, &r.UserID, &r.WeekStart, &r.Summary, &highlights, &mood,
		&entriesFrom, &entriesTo, &generatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan reflection: %w", err)
	}

	if err := json.Unmarshal([]byte(highlights), &r.Highlights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal highlights: %w", err)
	}
	if mood.Valid && mood.String != "" {
		r.Mood = &MoodRollup{}
		if err := json.Unmarshal([]byte(mood.String), r.Mood); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mood: %w", err)
		}
	}

	r.EntriesFrom = time.UnixMilli(entriesFrom).UTC()
	r.EntriesTo = time.UnixMilli(entriesTo).UTC()
	r.GeneratedAt = time.UnixMilli(generatedAt).UTC()
	return &r, nil
}

// nullableString converts empty JSON to NULL for storage.
func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
