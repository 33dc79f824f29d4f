package period

import (
	"testing"
	"time"
)

func TestWeekStart_MondayBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		instant time.Time
		want    string
	}{
		{
			name:    "monday midnight maps to itself",
			instant: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), // Monday
			want:    "2024-01-01",
		},
		{
			name:    "sunday end of week maps back to monday",
			instant: time.Date(2024, 1, 7, 23, 59, 59, 0, time.UTC), // Sunday
			want:    "2024-01-01",
		},
		{
			name:    "wednesday mid week",
			instant: time.Date(2024, 1, 3, 12, 30, 0, 0, time.UTC),
			want:    "2024-01-01",
		},
		{
			name:    "next monday starts a new week",
			instant: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
			want:    "2024-01-08",
		},
		{
			name:    "week spanning a month boundary",
			instant: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), // Saturday
			want:    "2024-02-26",
		},
		{
			name:    "week spanning a year boundary",
			instant: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), // Wednesday
			want:    "2024-12-30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekKey(tt.instant)
			if got != tt.want {
				t.Errorf("WeekKey(%v) = %q, want %q", tt.instant, got, tt.want)
			}

			ws := WeekStart(tt.instant)
			if ws.Hour() != 0 || ws.Minute() != 0 || ws.Second() != 0 || ws.Nanosecond() != 0 {
				t.Errorf("WeekStart(%v) has time-of-day component: %v", tt.instant, ws)
			}
			if ws.Weekday() != time.Monday {
				t.Errorf("WeekStart(%v) = %v, not a Monday", tt.instant, ws.Weekday())
			}
		})
	}
}

func TestWeekStart_StableWithinWeek(t *testing.T) {
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) // Monday

	for hours := 0; hours < 7*24; hours++ {
		instant := start.Add(time.Duration(hours) * time.Hour)
		if got := WeekStart(instant); !got.Equal(start) {
			t.Fatalf("WeekStart(%v) = %v, want %v", instant, got, start)
		}
	}
}

func TestWeekEnd(t *testing.T) {
	instant := time.Date(2024, 1, 3, 15, 0, 0, 0, time.UTC)
	want := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	if got := WeekEnd(instant); !got.Equal(want) {
		t.Errorf("WeekEnd(%v) = %v, want %v", instant, got, want)
	}
}

func TestWeekStart_NonUTCInput(t *testing.T) {
	// 2024-01-08 01:00 in UTC+2 is 2024-01-07 23:00 UTC, still the old week.
	loc := time.FixedZone("UTC+2", 2*3600)
	instant := time.Date(2024, 1, 8, 1, 0, 0, 0, loc)

	if got := WeekKey(instant); got != "2024-01-01" {
		t.Errorf("WeekKey(%v) = %q, want %q", instant, got, "2024-01-01")
	}
}

func TestMonthKey(t *testing.T) {
	tests := []struct {
		instant time.Time
		want    string
	}{
		{time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), "2024-01"},
		{time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), "2024-12"},
		// 2024-02-01 00:30 UTC+2 is still January in UTC.
		{time.Date(2024, 2, 1, 0, 30, 0, 0, time.FixedZone("UTC+2", 2*3600)), "2024-01"},
	}

	for _, tt := range tests {
		if got := MonthKey(tt.instant); got != tt.want {
			t.Errorf("MonthKey(%v) = %q, want %q", tt.instant, got, tt.want)
		}
	}
}

func TestDayKey(t *testing.T) {
	instant := time.Date(2024, 5, 20, 23, 59, 59, 0, time.UTC)
	if got := DayKey(instant); got != "2024-05-20" {
		t.Errorf("DayKey(%v) = %q, want %q", instant, got, "2024-05-20")
	}

	if got := DayStart(instant); !got.Equal(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DayStart(%v) = %v", instant, got)
	}
}
