package store

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/habitbot/internal/database"
)

var testDay = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func TestMarkDoneIdempotent(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)
	h := mustHabit(t, hs, 1, "Run")

	if err := hs.MarkDone(h.ID, testDay); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	if err := hs.MarkDone(h.ID, testDay); err != nil {
		t.Fatalf("repeat mark done: %v", err)
	}

	logs, err := hs.Logs(h.ID, 1, testDay)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("logs = %d, want exactly 1 entry for the day", len(logs))
	}

	res, err := hs.Stats(h.ID, 1, testDay)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if res.Completed != 1 {
		t.Errorf("completed = %d, want 1 (overwrite, not duplicate)", res.Completed)
	}
}

func TestMarkUndoneOverwrites(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)
	h := mustHabit(t, hs, 1, "Run")

	if err := hs.MarkDone(h.ID, testDay); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	if err := hs.MarkUndone(h.ID, testDay); err != nil {
		t.Fatalf("mark undone: %v", err)
	}

	res, err := hs.Stats(h.ID, 1, testDay)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if res.Completed != 0 {
		t.Errorf("completed = %d, want 0 after undone", res.Completed)
	}

	logs, err := hs.Logs(h.ID, 1, testDay)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("logs = %d, want 1 (overwritten entry)", len(logs))
	}
}

func TestMarkMissingHabit(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)

	if err := hs.MarkDone(9999, testDay); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTodayStatus(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)
	run := mustHabit(t, hs, 1, "Run")
	mustHabit(t, hs, 1, "Read")

	if err := hs.MarkDone(run.ID, testDay); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	habits, err := hs.TodayStatus(1, testDay)
	if err != nil {
		t.Fatalf("today status: %v", err)
	}
	if len(habits) != 2 {
		t.Fatalf("len = %d, want 2", len(habits))
	}
	if !habits[0].Completed {
		t.Error("Run should report completed")
	}
	if habits[1].Completed {
		t.Error("Read has no entry and should report not completed")
	}
}

func TestTodayStatusIgnoresOtherDays(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)
	h := mustHabit(t, hs, 1, "Run")

	yesterday := testDay.AddDate(0, 0, -1)
	if err := hs.MarkDone(h.ID, yesterday); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	habits, err := hs.TodayStatus(1, testDay)
	if err != nil {
		t.Fatalf("today status: %v", err)
	}
	if habits[0].Completed {
		t.Error("yesterday's entry must not count as today")
	}
}

func TestTodayStatusOneRowPerHabit(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)
	run := mustHabit(t, hs, 1, "Run")
	read := mustHabit(t, hs, 1, "Read")

	// History on several days must not duplicate or reorder rows.
	for _, offset := range []int{0, 1, 2} {
		if err := hs.MarkDone(run.ID, testDay.AddDate(0, 0, -offset)); err != nil {
			t.Fatalf("mark run day -%d: %v", offset, err)
		}
	}
	if err := hs.MarkUndone(read.ID, testDay.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("mark read yesterday: %v", err)
	}

	habits, err := hs.TodayStatus(1, testDay)
	if err != nil {
		t.Fatalf("today status: %v", err)
	}
	if len(habits) != 2 {
		t.Fatalf("len = %d, want one row per habit", len(habits))
	}
	if habits[0].ID != run.ID || habits[1].ID != read.ID {
		t.Errorf("order = %d,%d, want insertion order %d,%d", habits[0].ID, habits[1].ID, run.ID, read.ID)
	}
	if !habits[0].Completed {
		t.Error("Run is done today and should report completed")
	}
	if habits[1].Completed {
		t.Error("Read has no entry today and should report not completed")
	}
}

func TestStatsWindow(t *testing.T) {
	us, hs := setupTestDB(t)
	mustUser(t, us, 1)
	h := mustHabit(t, hs, 1, "Run")

	// 5 of the trailing 7 days done.
	for _, offset := range []int{0, 1, 3, 5, 6} {
		if err := hs.MarkDone(h.ID, testDay.AddDate(0, 0, -offset)); err != nil {
			t.Fatalf("mark done day -%d: %v", offset, err)
		}
	}
	// Entry outside the window must not count.
	if err := hs.MarkDone(h.ID, testDay.AddDate(0, 0, -10)); err != nil {
		t.Fatalf("mark done day -10: %v", err)
	}

	res, err := hs.Stats(h.ID, 7, testDay)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if res.Completed != 5 {
		t.Errorf("completed = %d, want 5", res.Completed)
	}
	if res.SuccessRate != 71.43 {
		t.Errorf("success rate = %v, want 71.43", res.SuccessRate)
	}
	if res.CurrentStreak != 2 {
		t.Errorf("streak = %d, want 2 (today and yesterday)", res.CurrentStreak)
	}
}

func TestConcurrentMarksSingleEntry(t *testing.T) {
	// A file-backed database so the pool's connections all see one store;
	// an in-memory SQLite database is per-connection.
	db, err := database.Open(filepath.Join(t.TempDir(), "concurrent.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	us, hs := NewUserStore(db), NewHabitStore(db)
	mustUser(t, us, 1)
	h := mustHabit(t, hs, 1, "Run")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- hs.MarkDone(h.ID, testDay)
		}()
		go func() {
			defer wg.Done()
			errs <- hs.MarkUndone(h.ID, testDay)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent mark: %v", err)
		}
	}

	logs, err := hs.Logs(h.ID, 1, testDay)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("logs = %d, want exactly 1 row for the date", len(logs))
	}
}
