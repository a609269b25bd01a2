// Package timefmt converts epoch-millisecond timestamps into display strings.
// Every function is pure: the reference time or location is always passed in.
package timefmt

import (
	"time"

	"github.com/dustin/go-humanize"
)

const (
	clockLayout    = "3:04 PM"
	weekdayLayout  = "Mon"
	shortLayout    = "1/2"
	fullDateLayout = "Monday, January 2, 2006"
)

// List formats a timestamp for a conversation list row: the clock time for
// today, "Yesterday", a short weekday within the last week, else month/day.
func List(ms int64, now time.Time) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms).In(now.Location())
	switch days := DaysBetween(t, now); {
	case days < 1:
		return t.Format(clockLayout)
	case days < 2:
		return "Yesterday"
	case days < 7:
		return t.Format(weekdayLayout)
	default:
		return t.Format(shortLayout)
	}
}

// Clock formats the time of day, e.g. "3:04 PM".
func Clock(ms int64, loc *time.Location) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).In(loc).Format(clockLayout)
}

// FullDate formats a date separator label, e.g. "Monday, January 2, 2006".
func FullDate(ms int64, loc *time.Location) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).In(loc).Format(fullDateLayout)
}

// Relative returns a humanized offset from now, e.g. "5 minutes ago".
func Relative(ms int64, now time.Time) string {
	if ms == 0 {
		return ""
	}
	return humanize.RelTime(time.UnixMilli(ms), now, "ago", "from now")
}

// SameDay reports whether two timestamps fall on the same calendar day in loc.
func SameDay(a, b int64, loc *time.Location) bool {
	ta := time.UnixMilli(a).In(loc)
	tb := time.UnixMilli(b).In(loc)
	return ta.Year() == tb.Year() && ta.YearDay() == tb.YearDay()
}

// DaysBetween counts calendar days from t to now, in now's location.
// Negative when t is on a later day than now.
func DaysBetween(t, now time.Time) int {
	t = t.In(now.Location())
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
