// Package period derives calendar accounting buckets from wall-clock time.
//
// Daybook gates expensive work per calendar period: reflections are generated
// at most once per ISO week, usage budgets accumulate per month, and journal
// entries are limited to one per UTC day. All three derivations live here as
// pure functions over time.Time so that every caller agrees on the bucket
// boundaries.
//
// All computation happens in UTC. Weeks start on Monday (ISO 8601), not
// Sunday; callers passing a Sunday instant get the Monday six days earlier.
package period

import "time"

// Key layout constants for the string forms of each period kind.
const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// WeekStart returns the UTC Monday 00:00:00 of the week enclosing t.
//
// The result is stable for every instant within the same ISO week and
// monotonically non-decreasing as t advances.
func WeekStart(t time.Time) time.Time {
	u := t.UTC()
	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	offset := (int(u.Weekday()) + 6) % 7
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// WeekEnd returns the exclusive end of the week enclosing t: the Monday
// 00:00:00 UTC following WeekStart(t).
func WeekEnd(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 7)
}

// WeekKey returns the date of WeekStart(t) formatted as "2006-01-02".
// This is the durable key under which a week's reflection is stored.
func WeekKey(t time.Time) string {
	return WeekStart(t).Format(dayLayout)
}

// MonthKey returns the UTC year-month of t formatted as "2006-01".
// Monthly usage budgets are accounted against this key.
func MonthKey(t time.Time) string {
	return t.UTC().Format(monthLayout)
}

// DayStart returns the UTC midnight of the day enclosing t.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey returns the UTC calendar date of t formatted as "2006-01-02".
// Journal entries are unique per (user, DayKey).
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}
