package store

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/habitbot/internal/model"
)

func mustUser(t *testing.T, us *UserStore, id int64) {
	t.Helper()
	if err := us.Upsert(id, "user", "User"); err != nil {
		t.Fatalf("upsert user %d: %v", id, err)
	}
}

func mustHabit(t *testing.T, hs *HabitStore, userID int64, name string) *model.Habit {
	t.Helper()
	h, err := hs.Create(userID, name, "", model.FrequencyDaily)
	if err != nil {
		t.Fatalf("create habit %q: %v", name, err)
	}
	return h
}

func TestHabitCreate(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)

	h, err := hs.Create(1, "Drink water", "Eight glasses", model.FrequencyDaily)
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	if h.ID == 0 {
		t.Error("expected assigned id")
	}
	if h.UserID != 1 {
		t.Errorf("user_id = %d, want 1", h.UserID)
	}
	if h.Name != "Drink water" || h.Description != "Eight glasses" {
		t.Errorf("habit = %q/%q, unexpected fields", h.Name, h.Description)
	}
	if h.Frequency != model.FrequencyDaily {
		t.Errorf("frequency = %q, want daily", h.Frequency)
	}
	if h.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestHabitCreateValidation(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)

	tests := []struct {
		name      string
		habitName string
		frequency model.Frequency
	}{
		{"empty name", "", model.FrequencyDaily},
		{"whitespace name", "   ", model.FrequencyDaily},
		{"bad frequency", "Read", model.Frequency("hourly")},
		{"empty frequency", "Read", model.Frequency("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hs.Create(1, tt.habitName, "", tt.frequency)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}

	habits, err := hs.ListByUser(1)
	if err != nil {
		t.Fatalf("list habits: %v", err)
	}
	if len(habits) != 0 {
		t.Errorf("expected no partial writes, got %d habits", len(habits))
	}
}

func TestHabitListInsertionOrder(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)

	names := []string{"Run", "Read", "Meditate"}
	for _, n := range names {
		mustHabit(t, hs, 1, n)
	}

	habits, err := hs.ListByUser(1)
	if err != nil {
		t.Fatalf("list habits: %v", err)
	}
	if len(habits) != 3 {
		t.Fatalf("len = %d, want 3", len(habits))
	}
	for i, n := range names {
		if habits[i].Name != n {
			t.Errorf("habits[%d].Name = %q, want %q", i, habits[i].Name, n)
		}
	}
}

func TestHabitListScopedToUser(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)
	mustUser(t, us, 2)
	mustHabit(t, hs, 1, "Mine")
	mustHabit(t, hs, 2, "Theirs")

	habits, err := hs.ListByUser(1)
	if err != nil {
		t.Fatalf("list habits: %v", err)
	}
	if len(habits) != 1 || habits[0].Name != "Mine" {
		t.Errorf("habits = %v, want only the user's own", habits)
	}
}

func TestGetOwned(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)
	mustUser(t, us, 2)
	h := mustHabit(t, hs, 1, "Run")

	if _, err := hs.GetOwned(h.ID, 1); err != nil {
		t.Errorf("owner lookup: %v", err)
	}
	if _, err := hs.GetOwned(h.ID, 2); !errors.Is(err, ErrNotOwner) {
		t.Errorf("err = %v, want ErrNotOwner", err)
	}
	if _, err := hs.GetOwned(9999, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHabitDelete(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)
	h := mustHabit(t, hs, 1, "Run")

	today := time.Now()
	if err := hs.MarkDone(h.ID, today); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	if err := hs.Delete(h.ID, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := hs.GetByID(h.ID)
	if err != nil {
		t.Fatalf("get deleted habit: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted habit")
	}

	// Stats on the deleted id must fail, never return stale data.
	if _, err := hs.Stats(h.ID, 7, today); !errors.Is(err, ErrNotFound) {
		t.Errorf("stats err = %v, want ErrNotFound", err)
	}

	// Logs are gone too.
	logs, err := hs.Logs(h.ID, 7, today)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected cascaded log delete, got %d entries", len(logs))
	}
}

func TestHabitDeleteWrongOwner(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)
	mustUser(t, us, 2)
	h := mustHabit(t, hs, 1, "Run")

	today := time.Now()
	if err := hs.MarkDone(h.ID, today); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	if err := hs.Delete(h.ID, 2); !errors.Is(err, ErrNotOwner) {
		t.Errorf("err = %v, want ErrNotOwner", err)
	}

	// Habit and its log survive the rejected delete.
	got, err := hs.GetByID(h.ID)
	if err != nil || got == nil {
		t.Fatalf("habit should survive, got %v err %v", got, err)
	}
	logs, err := hs.Logs(h.ID, 7, today)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("logs = %d, want 1 surviving entry", len(logs))
	}
}

func TestHabitDeleteMissing(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)

	if err := hs.Delete(9999, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
