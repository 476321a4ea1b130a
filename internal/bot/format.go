package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/habitbot/internal/model"
	"github.com/dukerupert/habitbot/internal/stats"
)

const welcomeText = `🎯 Welcome to Habit Tracker Bot!

With this bot you can:
• Create habits to track
• Check them off every day
• Watch your statistics and progress
• Keep your streak going

Use the menu below or the commands:
/habits - list your habits
/add - add a habit
/today - what to do today
/stats - statistics
/help - help`

const helpText = `📚 *How to use this bot*

*Commands:*
/start - start the bot
/habits - show all your habits
/add - add a new habit
/today - show today's habits
/stats - overall statistics
/cancel - abandon habit creation
/help - this message

*Workflow:*
1. Add a habit via "` + LabelNew + `"
2. Check it off daily via "` + LabelToday + `"
3. Watch your progress in "` + LabelStats + `"

*What is a streak?*
The number of days in a row you completed a habit without a gap.`

// habitWithStats pairs a habit with its computed window statistics for
// rendering.
type habitWithStats struct {
	model.Habit
	Stats stats.Result
}

func habitListText(items []habitWithStats) string {
	var b strings.Builder
	b.WriteString("📋 *Your habits:*\n\n")
	for i, it := range items {
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, it.Name)
		if it.Description != "" {
			fmt.Fprintf(&b, "   _%s_\n", it.Description)
		}
		fmt.Fprintf(&b, "   📈 This week: %d/%d days | Streak: %d days\n\n",
			it.Stats.Completed, it.Stats.TotalDays, it.Stats.CurrentStreak)
	}
	return b.String()
}

func todayText(habits []model.HabitToday, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *Habits for today (%s):*\n\n", today.Format("02.01.2006"))
	for _, h := range habits {
		status := "⏳"
		if h.Completed {
			status = "✅"
		}
		fmt.Fprintf(&b, "%s *%s*\n", status, h.Name)
		if h.Description != "" {
			fmt.Fprintf(&b, "   _%s_\n", h.Description)
		}
	}
	b.WriteString("\nTap a habit below to check it off.")
	return b.String()
}

func overallStatsText(items []habitWithStats) string {
	var b strings.Builder
	b.WriteString("📊 *Your statistics:*\n\n")

	totalCompleted, totalDays, bestStreak := 0, 0, 0
	for _, it := range items {
		totalCompleted += it.Stats.Completed
		totalDays += it.Stats.TotalDays
		if it.Stats.CurrentStreak > bestStreak {
			bestStreak = it.Stats.CurrentStreak
		}
		fmt.Fprintf(&b, "• *%s*: %.2f%% success (streak: %d)\n", it.Name, it.Stats.SuccessRate, it.Stats.CurrentStreak)
	}

	overall := 0.0
	if totalDays > 0 {
		overall = float64(totalCompleted) / float64(totalDays) * 100
	}

	fmt.Fprintf(&b, "\n*Last 30 days overall:*\n")
	fmt.Fprintf(&b, "• Completed: %d of %d possible\n", totalCompleted, totalDays)
	fmt.Fprintf(&b, "• Success rate: %.2f%%\n", overall)
	fmt.Fprintf(&b, "• Best streak: %d days\n\n", bestStreak)

	switch {
	case overall >= 80:
		b.WriteString("🎉 Excellent work, keep it up!")
	case overall >= 50:
		b.WriteString("👍 Good results, stay on track!")
	default:
		b.WriteString("💪 Don't give up, every day is a new chance!")
	}
	return b.String()
}

func habitDetailText(h *model.Habit, week stats.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", h.Name)
	if h.Description != "" {
		fmt.Fprintf(&b, "_%s_\n", h.Description)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "📅 Frequency: %s\n", h.Frequency.Label())
	fmt.Fprintf(&b, "📊 This week: %d/%d days\n", week.Completed, week.TotalDays)
	fmt.Fprintf(&b, "🔥 Current streak: %d days\n", week.CurrentStreak)
	fmt.Fprintf(&b, "✅ Success rate: %.2f%%\n\n", week.SuccessRate)

	b.WriteString("Last 7 days:\n")
	for _, e := range week.Entries {
		mark := "❌"
		if e.Completed {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s: %s  ", e.Date.Format("02.01"), mark)
	}
	return b.String()
}

func habitStatsText(name string, month, week stats.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Statistics for '%s'*\n\n", name)
	fmt.Fprintf(&b, "*Last 30 days:*\n")
	fmt.Fprintf(&b, "• Completed: %d of %d days\n", month.Completed, month.TotalDays)
	fmt.Fprintf(&b, "• Success rate: %.2f%%\n", month.SuccessRate)
	fmt.Fprintf(&b, "• Current streak: %d days\n\n", month.CurrentStreak)

	fmt.Fprintf(&b, "*Last 7 days:*\n")
	fmt.Fprintf(&b, "• Completed: %d of %d days\n", week.Completed, week.TotalDays)
	fmt.Fprintf(&b, "• Success rate: %.2f%%\n\n", week.SuccessRate)

	fmt.Fprintf(&b, "Progress: [%s]\n", progressBar(month.SuccessRate, 20))

	switch {
	case month.CurrentStreak >= 7:
		b.WriteString("🔥 Great streak, keep the pace!")
	case month.CurrentStreak >= 3:
		b.WriteString("👍 Nice run, don't slow down!")
	default:
		b.WriteString("💪 Start a new streak today!")
	}
	return b.String()
}

// progressBar renders a rate from 0 to 100 as filled/empty cells.
func progressBar(rate float64, cells int) string {
	filled := int(rate / 100 * float64(cells))
	if filled < 0 {
		filled = 0
	}
	if filled > cells {
		filled = cells
	}
	return strings.Repeat("▓", filled) + strings.Repeat("░", cells-filled)
}

func deleteConfirmText(name string) string {
	return fmt.Sprintf("⚠️ Are you sure you want to delete '%s'?\n\nAll of its completion history will be gone for good!", name)
}
