package timefmt

import (
	"testing"
	"time"
)

// Wednesday, 2026-10-14 15:30 UTC.
var now = time.Date(2026, time.October, 14, 15, 30, 0, 0, time.UTC)

func ms(t time.Time) int64 { return t.UnixMilli() }

func TestList(t *testing.T) {
	tests := []struct {
		name string
		ts   int64
		want string
	}{
		{"zero", 0, ""},
		{"today", ms(now.Add(-5 * time.Minute)), "3:25 PM"},
		{"today morning", ms(time.Date(2026, 10, 14, 0, 5, 0, 0, time.UTC)), "12:05 AM"},
		{"yesterday late", ms(time.Date(2026, 10, 13, 23, 59, 0, 0, time.UTC)), "Yesterday"},
		{"two days ago", ms(time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)), "Mon"},
		{"six days ago", ms(time.Date(2026, 10, 8, 9, 0, 0, 0, time.UTC)), "Thu"},
		{"a week ago", ms(time.Date(2026, 10, 7, 9, 0, 0, 0, time.UTC)), "10/7"},
		{"future", ms(now.Add(time.Hour)), "4:30 PM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := List(tt.ts, now); got != tt.want {
				t.Errorf("List() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClockAndFullDate(t *testing.T) {
	ts := ms(now)
	if got := Clock(ts, time.UTC); got != "3:30 PM" {
		t.Errorf("Clock() = %q, want 3:30 PM", got)
	}
	if got := FullDate(ts, time.UTC); got != "Wednesday, October 14, 2026" {
		t.Errorf("FullDate() = %q", got)
	}
	if Clock(0, time.UTC) != "" || FullDate(0, time.UTC) != "" {
		t.Error("zero timestamp should format as empty string")
	}
}

func TestRelative(t *testing.T) {
	if got := Relative(ms(now.Add(-5*time.Minute)), now); got != "5 minutes ago" {
		t.Errorf("Relative() = %q, want 5 minutes ago", got)
	}
	if got := Relative(0, now); got != "" {
		t.Errorf("Relative(0) = %q, want empty", got)
	}
}

func TestSameDay(t *testing.T) {
	a := ms(time.Date(2026, 10, 14, 0, 1, 0, 0, time.UTC))
	b := ms(time.Date(2026, 10, 14, 23, 59, 0, 0, time.UTC))
	c := ms(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	if !SameDay(a, b, time.UTC) {
		t.Error("SameDay(a, b) = false, want true")
	}
	if SameDay(b, c, time.UTC) {
		t.Error("SameDay(b, c) = true, want false")
	}
}
