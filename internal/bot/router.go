// Package bot routes decoded Telegram updates to handlers over the habit
// store, the statistics calculator, and the create-habit conversation
// flow.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/habitbot/internal/metrics"
	"github.com/dukerupert/habitbot/internal/model"
	"github.com/dukerupert/habitbot/internal/session"
	"github.com/dukerupert/habitbot/internal/store"
	"github.com/dukerupert/habitbot/internal/telegram"
)

// Stats windows used across views, in days.
const (
	weekWindow  = 7
	monthWindow = 30
)

// Sender is the outbound slice of the Telegram client the router needs.
// Keyboard may be *telegram.InlineKeyboard, *telegram.ReplyKeyboard, or nil.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard any) error
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard *telegram.InlineKeyboard) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Router dispatches inbound updates. It holds no per-update state; every
// handler re-reads the store before responding.
type Router struct {
	users    *store.UserStore
	habits   *store.HabitStore
	sessions *session.Manager
	sender   Sender
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewRouter(users *store.UserStore, habits *store.HabitStore, sessions *session.Manager, sender Sender, m *metrics.Metrics, logger *slog.Logger) *Router {
	return &Router{
		users:    users,
		habits:   habits,
		sessions: sessions,
		sender:   sender,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleUpdate processes one update. Errors are logged and turned into
// short user-facing messages; nothing propagates to the poll loop.
func (r *Router) HandleUpdate(ctx context.Context, u telegram.Update) {
	logger := r.logger.With("correlation_id", uuid.NewString(), "update_id", u.UpdateID)

	var err error
	switch {
	case u.Message != nil && u.Message.From != nil:
		r.metrics.UpdatesTotal.WithLabelValues("message").Inc()
		err = r.handleMessage(ctx, logger, u.Message)
	case u.CallbackQuery != nil:
		r.metrics.UpdatesTotal.WithLabelValues("callback").Inc()
		err = r.handleCallback(ctx, logger, u.CallbackQuery)
	default:
		return
	}

	if err != nil {
		r.metrics.HandlerErrors.Inc()
		logger.Error("update failed", "error", err)
	}
}

// --- Message handlers ---

func (r *Router) handleMessage(ctx context.Context, logger *slog.Logger, msg *telegram.Message) error {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	if err := r.users.Upsert(userID, msg.From.Username, msg.From.FirstName); err != nil {
		return err
	}

	action := DecodeMessage(msg.Text)
	logger.Debug("message", "user_id", userID, "kind", action.Kind)

	// An active conversation consumes free text before dispatch.
	if action.Kind == KindText {
		if st := r.sessions.State(userID); st != session.StateIdle {
			return r.handleFlowInput(ctx, userID, chatID, st, action.Text)
		}
	}

	switch action.Kind {
	case KindStart:
		return r.sender.SendMessage(ctx, chatID, welcomeText, MainMenu())
	case KindHelp:
		return r.sender.SendMessage(ctx, chatID, helpText, nil)
	case KindListHabits:
		return r.sendHabitList(ctx, userID, chatID, "You don't have any habits yet. Add your first one from the menu!")
	case KindNewHabit:
		r.sessions.Begin(userID)
		return r.sender.SendMessage(ctx, chatID, "Enter a name for the new habit (for example: 'Morning exercise'):", nil)
	case KindToday:
		return r.sendToday(ctx, userID, chatID)
	case KindStats:
		return r.sendOverallStats(ctx, userID, chatID)
	case KindDeleteMenu:
		return r.sendDeleteMenu(ctx, userID, chatID)
	case KindCancel:
		if r.sessions.Cancel(userID) {
			return r.sender.SendMessage(ctx, chatID, "Habit creation canceled.", nil)
		}
		return r.sender.SendMessage(ctx, chatID, "Nothing to cancel.", nil)
	default:
		return r.sender.SendMessage(ctx, chatID, "I didn't understand that. Use the menu or /help.", nil)
	}
}

const flowExpiredText = "That conversation has expired, so the habit wasn't saved. Use " + LabelNew + " to start again."

// handleFlowInput advances the create-habit conversation with one text
// message. The state is the one observed at dispatch; a session that
// expires underneath a transition gets a start-over hint instead of
// silently swallowing the input.
func (r *Router) handleFlowInput(ctx context.Context, userID, chatID int64, st session.State, text string) error {
	text = strings.TrimSpace(text)

	switch st {
	case session.StateAwaitingName:
		if text == "" {
			return r.sender.SendMessage(ctx, chatID, "The name can't be empty. Enter a name for the habit:", nil)
		}
		if !r.sessions.SetName(userID, text) {
			return r.sender.SendMessage(ctx, chatID, flowExpiredText, nil)
		}
		return r.sender.SendMessage(ctx, chatID, "Add a description (or send '-' to skip):", nil)

	case session.StateAwaitingDescription:
		if text == "-" {
			text = ""
		}
		if !r.sessions.SetDescription(userID, text) {
			return r.sender.SendMessage(ctx, chatID, flowExpiredText, nil)
		}
		return r.sender.SendMessage(ctx, chatID, "How often will you do it?", FrequencyKeyboard())

	case session.StateAwaitingFrequency:
		// Typed frequency instead of a button press.
		f := model.Frequency(strings.ToLower(text))
		if !f.Valid() {
			return r.sender.SendMessage(ctx, chatID, "Please pick a frequency with the buttons, or type daily, weekdays, or weekends.", FrequencyKeyboard())
		}
		return r.commitHabit(ctx, userID, chatID, f)
	}
	return nil
}

// commitHabit finishes the flow: takes the draft, creates the habit, and
// reports the outcome. The flow always ends Idle, even on failure.
func (r *Router) commitHabit(ctx context.Context, userID, chatID int64, f model.Frequency) error {
	draft, ok := r.sessions.Take(userID)
	if !ok {
		return r.sender.SendMessage(ctx, chatID, "No habit creation in progress. Use "+LabelNew+" to start one.", nil)
	}

	habit, err := r.habits.Create(userID, draft.Name, draft.Description, f)
	if errors.Is(err, store.ErrValidation) {
		return r.sender.SendMessage(ctx, chatID, "That habit couldn't be saved: "+reason(err)+". Use "+LabelNew+" to try again.", nil)
	}
	if err != nil {
		if sendErr := r.sender.SendMessage(ctx, chatID, "Something went wrong saving the habit. Please try again.", nil); sendErr != nil {
			return fmt.Errorf("create habit: %w (send: %v)", err, sendErr)
		}
		return fmt.Errorf("create habit: %w", err)
	}

	return r.sender.SendMessage(ctx, chatID, fmt.Sprintf("✅ Habit '%s' added!", habit.Name), MainMenu())
}

func (r *Router) sendHabitList(ctx context.Context, userID, chatID int64, emptyText string) error {
	items, err := r.listWithStats(userID, weekWindow)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return r.sender.SendMessage(ctx, chatID, emptyText, nil)
	}

	habits := make([]model.Habit, len(items))
	for i, it := range items {
		habits[i] = it.Habit
	}
	return r.sender.SendMessage(ctx, chatID, habitListText(items), HabitsKeyboard(habits))
}

func (r *Router) sendToday(ctx context.Context, userID, chatID int64) error {
	today := r.now()
	habits, err := r.habits.TodayStatus(userID, today)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		return r.sender.SendMessage(ctx, chatID, "You don't have any habits to track yet.", nil)
	}

	plain := make([]model.Habit, len(habits))
	for i, h := range habits {
		plain[i] = h.Habit
	}
	return r.sender.SendMessage(ctx, chatID, todayText(habits, today), HabitsKeyboard(plain))
}

func (r *Router) sendOverallStats(ctx context.Context, userID, chatID int64) error {
	items, err := r.listWithStats(userID, monthWindow)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return r.sender.SendMessage(ctx, chatID, "You don't have any habits to show statistics for.", nil)
	}
	return r.sender.SendMessage(ctx, chatID, overallStatsText(items), nil)
}

func (r *Router) sendDeleteMenu(ctx context.Context, userID, chatID int64) error {
	habits, err := r.habits.ListByUser(userID)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		return r.sender.SendMessage(ctx, chatID, "You don't have any habits to delete.", nil)
	}

	var b strings.Builder
	b.WriteString("🗑 *Pick a habit to delete:*\n\n")
	for i, h := range habits {
		fmt.Fprintf(&b, "%d. %s\n", i+1, h.Name)
	}
	return r.sender.SendMessage(ctx, chatID, b.String(), HabitsKeyboard(habits))
}

func (r *Router) listWithStats(userID int64, windowDays int) ([]habitWithStats, error) {
	habits, err := r.habits.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	items := make([]habitWithStats, 0, len(habits))
	for _, h := range habits {
		s, err := r.habits.Stats(h.ID, windowDays, r.now())
		if err != nil {
			return nil, err
		}
		items = append(items, habitWithStats{Habit: h, Stats: s})
	}
	return items, nil
}

// --- Callback handlers ---

func (r *Router) handleCallback(ctx context.Context, logger *slog.Logger, cb *telegram.CallbackQuery) error {
	userID := cb.From.ID
	if err := r.users.Upsert(userID, cb.From.Username, cb.From.FirstName); err != nil {
		return err
	}

	action, err := DecodeCallback(cb.Data)
	if err != nil {
		logger.Warn("bad callback payload", "user_id", userID, "error", err)
		return r.sender.AnswerCallback(ctx, cb.ID, "That button is no longer supported.")
	}
	logger.Debug("callback", "user_id", userID, "kind", action.Kind)

	// The message the button lives on; edits target it.
	if cb.Message == nil {
		return r.sender.AnswerCallback(ctx, cb.ID, "This message is too old.")
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	switch action.Kind {
	case KindFrequency:
		if r.sessions.State(userID) != session.StateAwaitingFrequency {
			return r.sender.AnswerCallback(ctx, cb.ID, "No habit creation in progress.")
		}
		if err := r.sender.AnswerCallback(ctx, cb.ID, ""); err != nil {
			return err
		}
		return r.commitHabit(ctx, userID, chatID, action.Frequency)

	case KindHabitDetail:
		return r.showDetail(ctx, cb, action.HabitID)

	case KindMarkDone:
		return r.mark(ctx, cb, action.HabitID, true)

	case KindMarkUndone:
		return r.mark(ctx, cb, action.HabitID, false)

	case KindHabitStats:
		habit, err := r.habits.GetOwned(action.HabitID, userID)
		if err != nil {
			return r.answerStoreError(ctx, cb.ID, err)
		}
		month, err := r.habits.Stats(habit.ID, monthWindow, r.now())
		if err != nil {
			return err
		}
		week, err := r.habits.Stats(habit.ID, weekWindow, r.now())
		if err != nil {
			return err
		}
		if err := r.sender.EditMessageText(ctx, chatID, messageID, habitStatsText(habit.Name, month, week), DetailKeyboard(habit.ID)); err != nil {
			return err
		}
		return r.sender.AnswerCallback(ctx, cb.ID, "")

	case KindDeleteRequest:
		habit, err := r.habits.GetOwned(action.HabitID, userID)
		if err != nil {
			return r.answerStoreError(ctx, cb.ID, err)
		}
		if err := r.sender.EditMessageText(ctx, chatID, messageID, deleteConfirmText(habit.Name), ConfirmDeleteKeyboard(habit.ID)); err != nil {
			return err
		}
		return r.sender.AnswerCallback(ctx, cb.ID, "")

	case KindDeleteConfirm:
		err := r.habits.Delete(action.HabitID, userID)
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrNotOwner) {
			return r.answerStoreError(ctx, cb.ID, err)
		}
		if err != nil {
			return err
		}
		if err := r.sender.EditMessageText(ctx, chatID, messageID, "✅ Habit deleted.", nil); err != nil {
			return err
		}
		return r.sender.AnswerCallback(ctx, cb.ID, "")

	case KindDeleteCancel:
		if err := r.sender.EditMessageText(ctx, chatID, messageID, "Deletion canceled.", nil); err != nil {
			return err
		}
		return r.sender.AnswerCallback(ctx, cb.ID, "")
	}
	return nil
}

// showDetail renders the habit detail view in place of the message the
// button came from.
func (r *Router) showDetail(ctx context.Context, cb *telegram.CallbackQuery, habitID int64) error {
	habit, err := r.habits.GetOwned(habitID, cb.From.ID)
	if err != nil {
		return r.answerStoreError(ctx, cb.ID, err)
	}
	week, err := r.habits.Stats(habit.ID, weekWindow, r.now())
	if err != nil {
		return err
	}
	if err := r.sender.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID, habitDetailText(habit, week), DetailKeyboard(habit.ID)); err != nil {
		return err
	}
	return r.sender.AnswerCallback(ctx, cb.ID, "")
}

// mark flips today's entry and re-renders the detail view from a fresh
// read.
func (r *Router) mark(ctx context.Context, cb *telegram.CallbackQuery, habitID int64, done bool) error {
	habit, err := r.habits.GetOwned(habitID, cb.From.ID)
	if err != nil {
		return r.answerStoreError(ctx, cb.ID, err)
	}

	if done {
		err = r.habits.MarkDone(habit.ID, r.now())
	} else {
		err = r.habits.MarkUndone(habit.ID, r.now())
	}
	if err != nil {
		return err
	}

	toast := fmt.Sprintf("✅ %s marked as done!", habit.Name)
	if !done {
		toast = fmt.Sprintf("❌ %s marked as not done", habit.Name)
	}
	if err := r.sender.AnswerCallback(ctx, cb.ID, toast); err != nil {
		return err
	}

	week, err := r.habits.Stats(habit.ID, weekWindow, r.now())
	if err != nil {
		return err
	}
	return r.sender.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID, habitDetailText(habit, week), DetailKeyboard(habit.ID))
}

// answerStoreError maps store errors to a user-safe toast. Ownership
// failures read as "not found" so other users' habits stay invisible.
func (r *Router) answerStoreError(ctx context.Context, callbackID string, err error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrNotOwner) {
		return r.sender.AnswerCallback(ctx, callbackID, "Habit not found.")
	}
	return err
}

// reason strips the sentinel prefix from a validation error for display.
func reason(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
