package model

import "time"

// Frequency is the cadence a habit is expected to be performed on.
// Informational only: today's habit list is not filtered by it.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekdays Frequency = "weekdays"
	FrequencyWeekends Frequency = "weekends"
)

// Valid reports whether f is one of the enumerated frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekdays, FrequencyWeekends:
		return true
	}
	return false
}

// Label returns a human-readable form for display in messages.
func (f Frequency) Label() string {
	switch f {
	case FrequencyDaily:
		return "every day"
	case FrequencyWeekdays:
		return "on weekdays"
	case FrequencyWeekends:
		return "on weekends"
	}
	return string(f)
}

type Habit struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Frequency   Frequency `json:"frequency"`
	CreatedAt   time.Time `json:"created_at"`
}

// HabitToday pairs a habit with whether its log entry for today, if any,
// is marked completed.
type HabitToday struct {
	Habit
	Completed bool `json:"completed"`
}
