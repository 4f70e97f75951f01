package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"study-buddy/internal/model"
	"study-buddy/internal/repository"
)

// summaryTaskLimit caps how many pending tasks the daily summary lists.
const summaryTaskLimit = 10

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	store     *repository.Store
	analytics *AnalyticsService
}

func NewReminderService(store *repository.Store, analytics *AnalyticsService) *ReminderService {
	return &ReminderService{store: store, analytics: analytics}
}

// DailySummary renders pending tasks, today's plan and the weekly stats as Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	pending, err := s.store.Tasks.List(ctx, model.TaskQuery{Filter: model.FilterPending})
	if err != nil {
		return "", err
	}
	today := model.NewDate(now)
	plan, err := s.store.Plans.List(ctx, &today)
	if err != nil {
		return "", err
	}
	stats := s.analytics.ProductivityStatsAt(ctx, now, 7)
	goals := s.analytics.StudyGoalProgress(ctx, now)

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily report</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", today))

	builder.WriteString("🔥 <b>Pending tasks</b>\n")
	if len(pending) == 0 {
		builder.WriteString("— nothing pending\n")
	}
	for i, task := range pending {
		if i == summaryTaskLimit {
			builder.WriteString(fmt.Sprintf("… and %d more\n", len(pending)-summaryTaskLimit))
			break
		}
		builder.WriteString(FormatTask(task, today))
	}

	builder.WriteString("\n🕒 <b>Today's plan</b>\n")
	if len(plan) == 0 {
		builder.WriteString("— no plan entries\n")
	}
	for _, entry := range plan {
		builder.WriteString(FormatPlanEntry(entry))
	}

	builder.WriteString("\n📈 <b>Last 7 days</b>\n")
	builder.WriteString(FormatStats(stats))
	builder.WriteString(fmt.Sprintf("🎯 Today %d/%d min · %d/%d sessions this week\n",
		goals.TodayMinutes, goals.DailyMinutes, goals.WeekSessions, goals.WeeklySessions))

	return strings.TrimSpace(builder.String()), nil
}

// FormatTask renders one task line; overdue and due-soon tasks get their own icon.
func FormatTask(task model.Task, today model.Date) string {
	var sb strings.Builder

	icon := "🟢"
	switch {
	case task.Done:
		icon = "✅"
	case task.DueDate != nil && task.DueDate.Before(today.Time):
		icon = "⚠️"
	case task.DueDate != nil && !task.DueDate.After(today.AddDays(2).Time):
		icon = "⏳"
	}

	sb.WriteString(fmt.Sprintf("%s #%d %s", icon, task.ID, html.EscapeString(task.Title)))
	sb.WriteString(fmt.Sprintf(" <i>(%s · %s)</i>", task.Priority, html.EscapeString(task.Category)))

	if task.DueDate != nil && !task.Done {
		if task.DueDate.Before(today.Time) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s — <b>overdue</b>", task.DueDate))
		} else {
			daysLeft := int(task.DueDate.Sub(today.Time).Hours() / 24)
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · %d days left", task.DueDate, daysLeft))
		}
	}
	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(task.Description)))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func FormatPlanEntry(entry model.PlanEntry) string {
	mark := "▫️"
	if entry.Completed {
		mark = "✅"
	}
	slot := entry.TimeSlot
	if slot == "" {
		slot = "any time"
	}
	return fmt.Sprintf("%s #%d %s — %s\n", mark, entry.ID, html.EscapeString(slot), html.EscapeString(entry.TaskTitle))
}

func FormatStats(stats model.ProductivityStats) string {
	return fmt.Sprintf("✅ %d tasks done\n📚 %.1f h studied\n📝 %.1f%% average score\n⚡ productivity %.0f/100\n",
		stats.CompletedTasks, stats.StudyHours, stats.AverageScore, stats.ProductivityScore)
}
