// Package stats computes completion statistics over one habit's log.
// Everything here is pure: the store hands in the clipped log slice and a
// reference day, nothing touches the database.
package stats

import (
	"math"
	"time"
)

// Entry is one day's record for a habit: the calendar date (day
// granularity) and whether the habit was completed that day.
type Entry struct {
	Date      time.Time
	Completed bool
}

// Result summarizes a habit's log over a trailing window of days.
type Result struct {
	// Completed is how many days in the window have a completed entry.
	Completed int
	// TotalDays is the window length; days without an entry still count
	// toward the denominator.
	TotalDays int
	// SuccessRate is Completed/TotalDays as a percentage, rounded to two
	// decimal places. Zero when TotalDays is zero.
	SuccessRate float64
	// CurrentStreak counts consecutive completed days walking backward
	// from the reference day. A missing or not-completed day breaks it.
	CurrentStreak int
	// Entries is the raw log slice the result was computed from, oldest
	// first, for display.
	Entries []Entry
}

// Day normalizes t to midnight UTC of its civil date, so dates parsed
// from storage and dates taken from time.Now compare equal.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Compute summarizes entries over the trailing windowDays calendar days
// ending at today. Entries outside the window are ignored; duplicate
// dates keep the later entry.
func Compute(entries []Entry, windowDays int, today time.Time) Result {
	today = Day(today)
	windowStart := today.AddDate(0, 0, -(windowDays - 1))

	byDay := make(map[time.Time]bool, len(entries))
	res := Result{TotalDays: windowDays}
	for _, e := range entries {
		d := Day(e.Date)
		if d.Before(windowStart) || d.After(today) {
			continue
		}
		byDay[d] = e.Completed
		res.Entries = append(res.Entries, Entry{Date: d, Completed: e.Completed})
	}

	for _, completed := range byDay {
		if completed {
			res.Completed++
		}
	}

	if res.TotalDays > 0 {
		res.SuccessRate = round2(float64(res.Completed) / float64(res.TotalDays) * 100)
	}

	for i := 0; i < windowDays; i++ {
		completed, ok := byDay[today.AddDate(0, 0, -i)]
		if !ok || !completed {
			break
		}
		res.CurrentStreak++
	}

	return res
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
