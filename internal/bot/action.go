package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dukerupert/habitbot/internal/model"
)

// Kind tags a decoded user action.
type Kind int

const (
	KindText Kind = iota // free text; feeds the conversation flow when one is active

	// Commands and menu buttons.
	KindStart
	KindHelp
	KindListHabits
	KindNewHabit
	KindToday
	KindStats
	KindDeleteMenu
	KindCancel

	// Callback buttons, each carrying a habit id unless noted.
	KindHabitDetail
	KindMarkDone
	KindMarkUndone
	KindHabitStats
	KindDeleteRequest
	KindDeleteConfirm
	KindDeleteCancel // no id
	KindFrequency    // carries a frequency instead
)

// Action is a decoded inbound user action. Callback payloads are parsed
// exactly once, here; handlers never touch raw callback strings.
type Action struct {
	Kind      Kind
	HabitID   int64
	Frequency model.Frequency
	Text      string
}

// Menu button labels. These double as the reply-keyboard captions.
const (
	LabelHabits = "📋 My habits"
	LabelNew    = "➕ New habit"
	LabelToday  = "✅ Check in"
	LabelStats  = "📊 Statistics"
	LabelDelete = "🗑 Delete habit"
	LabelHelp   = "ℹ️ Help"
)

// DecodeMessage maps a text message to an action. Commands and menu
// labels get their own kinds; anything else is free text for the
// conversation flow.
func DecodeMessage(text string) Action {
	switch strings.TrimSpace(text) {
	case "/start":
		return Action{Kind: KindStart}
	case "/help", LabelHelp:
		return Action{Kind: KindHelp}
	case "/habits", LabelHabits:
		return Action{Kind: KindListHabits}
	case "/add", LabelNew:
		return Action{Kind: KindNewHabit}
	case "/today", LabelToday:
		return Action{Kind: KindToday}
	case "/stats", LabelStats:
		return Action{Kind: KindStats}
	case "/delete", LabelDelete:
		return Action{Kind: KindDeleteMenu}
	case "/cancel":
		return Action{Kind: KindCancel}
	}
	return Action{Kind: KindText, Text: text}
}

// Callback data prefixes, matching the prefix_<id> wire convention.
const (
	cbHabit         = "habit_"
	cbDone          = "done_"
	cbUndone        = "undone_"
	cbStats         = "stats_"
	cbDelete        = "delete_"
	cbConfirmDelete = "confirm_delete_"
	cbCancelDelete  = "cancel_delete"
	cbFrequency     = "freq_"
)

// DecodeCallback parses callback payload data into a typed action.
// Malformed payloads return an error; they must be rejected, not crash a
// handler.
func DecodeCallback(data string) (Action, error) {
	if data == cbCancelDelete {
		return Action{Kind: KindDeleteCancel}, nil
	}

	if rest, ok := strings.CutPrefix(data, cbFrequency); ok {
		f := model.Frequency(rest)
		if !f.Valid() {
			return Action{}, fmt.Errorf("unknown frequency payload %q", data)
		}
		return Action{Kind: KindFrequency, Frequency: f}, nil
	}

	// confirm_delete_ must be checked before delete_; both would match a
	// bare prefix scan otherwise.
	for _, p := range []struct {
		prefix string
		kind   Kind
	}{
		{cbConfirmDelete, KindDeleteConfirm},
		{cbDelete, KindDeleteRequest},
		{cbHabit, KindHabitDetail},
		{cbDone, KindMarkDone},
		{cbUndone, KindMarkUndone},
		{cbStats, KindHabitStats},
	} {
		rest, ok := strings.CutPrefix(data, p.prefix)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			return Action{}, fmt.Errorf("bad habit id in payload %q", data)
		}
		return Action{Kind: p.kind, HabitID: id}, nil
	}

	return Action{}, fmt.Errorf("unknown callback payload %q", data)
}
