package store

import (
	"fmt"
	"time"

	"github.com/dukerupert/habitbot/internal/model"
	"github.com/dukerupert/habitbot/internal/stats"
)

// dayFormat is how calendar dates are stored in habit_logs.log_date.
const dayFormat = "2006-01-02"

// --- Completion log methods ---

// MarkDone upserts the log entry for the given day to completed. The
// UNIQUE(habit_id, log_date) index makes concurrent marks settle on a
// single row, so calling twice is an overwrite, not a duplicate.
func (s *HabitStore) MarkDone(habitID int64, day time.Time) error {
	return s.mark(habitID, day, true)
}

// MarkUndone upserts the log entry for the given day to not completed.
func (s *HabitStore) MarkUndone(habitID int64, day time.Time) error {
	return s.mark(habitID, day, false)
}

func (s *HabitStore) mark(habitID int64, day time.Time, completed bool) error {
	h, err := s.GetByID(habitID)
	if err != nil {
		return err
	}
	if h == nil {
		return fmt.Errorf("habit %d: %w", habitID, ErrNotFound)
	}

	_, err = s.db.Exec(
		`INSERT INTO habit_logs (habit_id, log_date, completed) VALUES (?, ?, ?)
		 ON CONFLICT(habit_id, log_date) DO UPDATE SET completed = excluded.completed`,
		habitID, day.Format(dayFormat), completed,
	)
	if err != nil {
		return fmt.Errorf("mark habit: %w", err)
	}
	return nil
}

// TodayStatus returns every habit belonging to the user paired with
// whether today's entry, if any, is completed.
func (s *HabitStore) TodayStatus(userID int64, today time.Time) ([]model.HabitToday, error) {
	// Columns must be qualified: habit_logs has its own id.
	rows, err := s.db.Query(
		`SELECT habits.id, habits.user_id, habits.name, habits.description, habits.frequency, habits.created_at,
		        COALESCE(l.completed, 0)
		 FROM habits
		 LEFT JOIN habit_logs l ON l.habit_id = habits.id AND l.log_date = ?
		 WHERE habits.user_id = ?
		 ORDER BY habits.id ASC`,
		today.Format(dayFormat), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("today status: %w", err)
	}
	defer rows.Close()

	var out []model.HabitToday
	for rows.Next() {
		var ht model.HabitToday
		err := rows.Scan(&ht.ID, &ht.UserID, &ht.Name, &ht.Description, &ht.Frequency, &ht.CreatedAt, &ht.Completed)
		if err != nil {
			return nil, fmt.Errorf("scan today status: %w", err)
		}
		out = append(out, ht)
	}
	return out, rows.Err()
}

// Logs returns the habit's entries inside the trailing window of
// windowDays calendar days ending today, oldest first.
func (s *HabitStore) Logs(habitID int64, windowDays int, today time.Time) ([]stats.Entry, error) {
	since := today.AddDate(0, 0, -(windowDays - 1))
	rows, err := s.db.Query(
		`SELECT log_date, completed FROM habit_logs
		 WHERE habit_id = ? AND log_date >= ? AND log_date <= ?
		 ORDER BY log_date ASC`,
		habitID, since.Format(dayFormat), today.Format(dayFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var entries []stats.Entry
	for rows.Next() {
		var dateStr string
		var completed bool
		if err := rows.Scan(&dateStr, &completed); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		date, err := time.Parse(dayFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse log date %q: %w", dateStr, err)
		}
		entries = append(entries, stats.Entry{Date: date, Completed: completed})
	}
	return entries, rows.Err()
}

// Stats summarizes the habit's log over the trailing window. A habit that
// no longer exists reports ErrNotFound rather than empty stats so callers
// never see stale data for a deleted id.
func (s *HabitStore) Stats(habitID int64, windowDays int, today time.Time) (stats.Result, error) {
	h, err := s.GetByID(habitID)
	if err != nil {
		return stats.Result{}, err
	}
	if h == nil {
		return stats.Result{}, fmt.Errorf("habit %d: %w", habitID, ErrNotFound)
	}

	entries, err := s.Logs(habitID, windowDays, today)
	if err != nil {
		return stats.Result{}, err
	}
	return stats.Compute(entries, windowDays, today), nil
}
