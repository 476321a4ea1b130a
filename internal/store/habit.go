package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/habitbot/internal/model"
)

type HabitStore struct {
	db *sql.DB
}

func NewHabitStore(db *sql.DB) *HabitStore {
	return &HabitStore{db: db}
}

func scanHabit(scanner interface{ Scan(...any) error }) (*model.Habit, error) {
	var h model.Habit
	err := scanner.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.Frequency, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

const habitCols = `id, user_id, name, description, frequency, created_at`

// Create validates and inserts a new habit for the user. The name must be
// non-empty after trimming and the frequency must be one of the
// enumerated values; anything else is rejected with ErrValidation.
func (s *HabitStore) Create(userID int64, name, description string, frequency model.Frequency) (*model.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: habit name is empty", ErrValidation)
	}
	if !frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown frequency %q", ErrValidation, frequency)
	}

	result, err := s.db.Exec(
		`INSERT INTO habits (user_id, name, description, frequency) VALUES (?, ?, ?, ?)`,
		userID, name, description, string(frequency),
	)
	if err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *HabitStore) GetByID(id int64) (*model.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitCols+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return h, nil
}

// ListByUser returns the user's habits in insertion order.
func (s *HabitStore) ListByUser(userID int64) ([]model.Habit, error) {
	rows, err := s.db.Query(`SELECT `+habitCols+` FROM habits WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []model.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		habits = append(habits, *h)
	}
	return habits, rows.Err()
}

// GetOwned loads a habit and checks it belongs to userID. Returns
// ErrNotFound for a missing habit and ErrNotOwner for someone else's.
func (s *HabitStore) GetOwned(habitID, userID int64) (*model.Habit, error) {
	h, err := s.GetByID(habitID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("habit %d: %w", habitID, ErrNotFound)
	}
	if h.UserID != userID {
		return nil, fmt.Errorf("habit %d: %w", habitID, ErrNotOwner)
	}
	return h, nil
}

// Delete removes the habit and all of its log entries in one transaction.
// Only the owning user may delete; a mismatched requester gets ErrNotOwner
// and the habit is left untouched.
func (s *HabitStore) Delete(habitID, requestingUserID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var ownerID int64
	err = tx.QueryRow(`SELECT user_id FROM habits WHERE id = ?`, habitID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("habit %d: %w", habitID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get habit owner: %w", err)
	}
	if ownerID != requestingUserID {
		return fmt.Errorf("habit %d: %w", habitID, ErrNotOwner)
	}

	if _, err := tx.Exec(`DELETE FROM habit_logs WHERE habit_id = ?`, habitID); err != nil {
		return fmt.Errorf("delete habit logs: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM habits WHERE id = ?`, habitID); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return tx.Commit()
}
