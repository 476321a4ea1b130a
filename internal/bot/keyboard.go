package bot

import (
	"fmt"

	"github.com/dukerupert/habitbot/internal/model"
	"github.com/dukerupert/habitbot/internal/telegram"
)

// MainMenu is the persistent reply keyboard shown under the input field.
func MainMenu() *telegram.ReplyKeyboard {
	return &telegram.ReplyKeyboard{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: LabelHabits}, {Text: LabelNew}},
			{{Text: LabelToday}, {Text: LabelStats}},
			{{Text: LabelDelete}, {Text: LabelHelp}},
		},
		ResizeKeyboard: true,
	}
}

// HabitsKeyboard lists one button per habit, opening its detail view.
func HabitsKeyboard(habits []model.Habit) *telegram.InlineKeyboard {
	kb := &telegram.InlineKeyboard{}
	for _, h := range habits {
		kb.InlineKeyboard = append(kb.InlineKeyboard, []telegram.InlineKeyboardButton{
			{Text: h.Name, CallbackData: fmt.Sprintf("%s%d", cbHabit, h.ID)},
		})
	}
	return kb
}

// DetailKeyboard offers the per-habit actions.
func DetailKeyboard(habitID int64) *telegram.InlineKeyboard {
	row := func(text, prefix string) []telegram.InlineKeyboardButton {
		return []telegram.InlineKeyboardButton{
			{Text: text, CallbackData: fmt.Sprintf("%s%d", prefix, habitID)},
		}
	}
	return &telegram.InlineKeyboard{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			row("✅ Done today", cbDone),
			row("❌ Not done", cbUndone),
			row("📊 Statistics", cbStats),
			row("🗑 Delete", cbDelete),
		},
	}
}

// ConfirmDeleteKeyboard binds the confirmation to one specific habit id;
// a confirm for any other id is a different payload and therefore a no-op
// on this habit.
func ConfirmDeleteKeyboard(habitID int64) *telegram.InlineKeyboard {
	return &telegram.InlineKeyboard{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "✅ Yes, delete", CallbackData: fmt.Sprintf("%s%d", cbConfirmDelete, habitID)},
			{Text: "❌ No, keep it", CallbackData: cbCancelDelete},
		}},
	}
}

// FrequencyKeyboard offers the three enumerated frequency choices.
func FrequencyKeyboard() *telegram.InlineKeyboard {
	row := func(text string, f model.Frequency) []telegram.InlineKeyboardButton {
		return []telegram.InlineKeyboardButton{
			{Text: text, CallbackData: cbFrequency + string(f)},
		}
	}
	return &telegram.InlineKeyboard{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			row("Every day", model.FrequencyDaily),
			row("Weekdays", model.FrequencyWeekdays),
			row("Weekends", model.FrequencyWeekends),
		},
	}
}
