package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store with in-process maps. It mirrors the SQLite
// backend's semantics, including atomic insert-if-absent, and is the backend
// used by tests and by the coordinator's race tests.
type MemoryStore struct {
	mu          sync.Mutex
	entries     map[string][]Entry     // userID -> entries, unsorted
	entryDays   map[string]bool        // userID + "\x00" + day
	reflections map[string]*Reflection // userID + "\x00" + weekStart
	usage       map[string]Usage       // userID + "\x00" + month
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:     make(map[string][]Entry),
		entryDays:   make(map[string]bool),
		reflections: make(map[string]*Reflection),
		usage:       make(map[string]Usage),
	}
}

func key(parts ...string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "\x00" + p
	}
	return out
}

// InsertEntry stores e unless the user already has an entry for e.Day.
func (s *MemoryStore) InsertEntry(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(e.UserID, e.Day)
	if s.entryDays[k] {
		return ErrAlreadyExists
	}
	s.entryDays[k] = true
	s.entries[e.UserID] = append(s.entries[e.UserID], *e)
	return nil
}

// EntriesBetween returns the user's entries in [from, to) ascending.
func (s *MemoryStore) EntriesBetween(_ context.Context, userID string, from, to time.Time) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, e := range s.entries[userID] {
		if !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// InsertReflection stores r unless (user, week) already has one.
func (s *MemoryStore) InsertReflection(_ context.Context, r *Reflection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(r.UserID, r.WeekStart)
	if _, ok := s.reflections[k]; ok {
		return ErrAlreadyExists
	}
	clone := *r
	s.reflections[k] = &clone
	return nil
}

// Reflection returns the stored reflection for (user, week).
func (s *MemoryStore) Reflection(_ context.Context, userID, weekStart string) (*Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reflections[key(userID, weekStart)]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *r
	return &clone, nil
}

// Reflections returns the user's reflections, newest week first.
func (s *MemoryStore) Reflections(_ context.Context, userID string) ([]Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Reflection
	for _, r := range s.reflections {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart > out[j].WeekStart })
	return out, nil
}

// Usage returns the counter for (user, month), zero-valued when absent.
func (s *MemoryStore) Usage(_ context.Context, userID, month string) (Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usage[key(userID, month)]
	if !ok {
		return Usage{UserID: userID, Month: month}, nil
	}
	return u, nil
}

// RecordRun increments the counter for (user, month).
func (s *MemoryStore) RecordRun(_ context.Context, userID, month string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(userID, month)
	u := s.usage[k]
	u.UserID = userID
	u.Month = month
	u.Runs++
	u.LastRun = at
	s.usage[k] = u
	return nil
}

// LastRun returns the user's most recent run timestamp across all months.
func (s *MemoryStore) LastRun(_ context.Context, userID string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last time.Time
	for _, u := range s.usage {
		if u.UserID == userID && u.LastRun.After(last) {
			last = u.LastRun
		}
	}
	return last, nil
}

// ActiveUsers returns distinct users with entries in [from, to).
func (s *MemoryStore) ActiveUsers(_ context.Context, from, to time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for userID, entries := range s.entries {
		for _, e := range entries {
			if !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) && !seen[userID] {
				seen[userID] = true
				out = append(out, userID)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error { return nil }
