package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"study-buddy/internal/config"
	"study-buddy/internal/model"
	"study-buddy/internal/service"
)

const helpText = "ℹ️ <b>Commands</b>\n" +
	"<b>Tasks</b>\n" +
	"• /newtask — add a task step by step\n" +
	"• /tasks [all|pending|completed|high|urgent]\n" +
	"• /done &lt;id&gt; · /undo &lt;id&gt; · /delete &lt;id&gt;\n" +
	"• /clear — remove completed tasks\n" +
	"• /archive [days] — archive completed tasks older than days (30)\n" +
	"<b>Scores</b>\n" +
	"• /score subject; test; score[; max[; YYYY-MM-DD]]\n" +
	"• /scores · /delscore &lt;id&gt;\n" +
	"<b>Study</b>\n" +
	"• /study subject; minutes[; topic] · /sessions\n" +
	"• /goal title · /goals · /progress &lt;id&gt; &lt;0-100&gt;\n" +
	"• /plan YYYY-MM-DD; slot; title · /plans [date]\n" +
	"<b>Other</b>\n" +
	"• /stats [days] · /report · /backup\n" +
	"• /settings · /set &lt;key&gt; &lt;value&gt;\n" +
	"• /cancel — cancel the current input"

func (b *Bot) runCommand(ctx context.Context, chatID int64, cmd, args string) error {
	switch cmd {
	case "start", "help":
		return b.sendText(chatID, helpText)
	case "cancel":
		b.clearConversation()
		return b.sendText(chatID, "⏪ Input cancelled.")
	case "newtask":
		return b.startNewTaskConversation(chatID)
	case "tasks":
		return b.handleTasks(ctx, chatID, args)
	case "done":
		return b.handleToggle(ctx, chatID, args, true)
	case "undo":
		return b.handleToggle(ctx, chatID, args, false)
	case "delete":
		return b.handleDeleteTask(ctx, chatID, args)
	case "clear":
		return b.handleClear(ctx, chatID)
	case "archive":
		return b.handleArchive(ctx, chatID, args)
	case "score":
		return b.handleAddScore(ctx, chatID, args)
	case "scores":
		return b.handleScores(ctx, chatID)
	case "delscore":
		return b.handleDeleteScore(ctx, chatID, args)
	case "study":
		return b.handleStudy(ctx, chatID, args)
	case "sessions":
		return b.handleSessions(ctx, chatID)
	case "goal":
		return b.handleAddGoal(ctx, chatID, args)
	case "goals":
		return b.handleGoals(ctx, chatID)
	case "progress":
		return b.handleProgress(ctx, chatID, args)
	case "plan":
		return b.handleAddPlan(ctx, chatID, args)
	case "plans":
		return b.handlePlans(ctx, chatID, args)
	case "stats":
		return b.handleStats(ctx, chatID, args)
	case "report":
		if err := b.SendDailyReport(ctx); err != nil {
			return b.replyError(chatID, "report", err)
		}
		return nil
	case "backup":
		return b.handleBackup(ctx, chatID)
	case "settings":
		return b.handleSettings(chatID)
	case "set":
		return b.handleSet(chatID, args)
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleTasks(ctx context.Context, chatID int64, args string) error {
	filter, err := model.ParseTaskFilter(args)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	return b.sendTaskList(ctx, chatID, model.TaskQuery{Filter: filter})
}

func (b *Bot) handleToggle(ctx context.Context, chatID int64, args string, done bool) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	if err := b.store.Tasks.ToggleDone(ctx, id, done); err != nil {
		return b.replyError(chatID, "toggle task", err)
	}
	if done {
		return b.sendText(chatID, fmt.Sprintf("✅ Task #%d done.", id))
	}
	return b.sendText(chatID, fmt.Sprintf("↩️ Task #%d is pending again.", id))
}

func (b *Bot) handleDeleteTask(ctx context.Context, chatID int64, args string) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	if err := b.store.Tasks.Delete(ctx, id); err != nil {
		return b.replyError(chatID, "delete task", err)
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Task #%d deleted.", id))
}

func (b *Bot) handleClear(ctx context.Context, chatID int64) error {
	n, err := b.store.Tasks.ClearCompleted(ctx)
	if err != nil {
		return b.replyError(chatID, "clear completed", err)
	}
	return b.sendText(chatID, fmt.Sprintf("🧹 Removed %d completed tasks.", n))
}

func (b *Bot) handleArchive(ctx context.Context, chatID int64, args string) error {
	days, err := parseDays(args, 30)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	n, err := b.store.Tasks.ArchiveOld(ctx, days, true)
	if err != nil {
		return b.replyError(chatID, "archive tasks", err)
	}
	return b.sendText(chatID, fmt.Sprintf("📦 Archived %d tasks older than %d days.", n, days))
}

func (b *Bot) handleAddScore(ctx context.Context, chatID int64, args string) error {
	input, err := parseScoreArgs(args, model.NewDate(time.Now()))
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	id, err := b.scores.Add(ctx, input)
	if err != nil {
		return b.replyError(chatID, "add score", err)
	}
	return b.sendText(chatID, fmt.Sprintf("📝 Score #%d saved.", id))
}

func (b *Bot) handleScores(ctx context.Context, chatID int64) error {
	scores, err := b.scores.List(ctx, model.ScoreOrderDate)
	if err != nil {
		return b.replyError(chatID, "list scores", err)
	}
	if len(scores) == 0 {
		return b.sendText(chatID, "No test scores yet. Add one with /score.")
	}
	var sb strings.Builder
	sb.WriteString("📝 <b>Test scores</b>\n")
	for _, s := range scores {
		sb.WriteString(fmt.Sprintf("#%d %s · %s · %s — %g/%g (%.1f%%)", s.ID, s.Date, escape(s.Subject), escape(s.TestName), s.Score, s.MaxScore, s.Percent()))
		if s.Grade != "" {
			sb.WriteString(" " + escape(s.Grade))
		}
		sb.WriteByte('\n')
	}
	return b.sendText(chatID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleDeleteScore(ctx context.Context, chatID int64, args string) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	if err := b.scores.Delete(ctx, id); err != nil {
		return b.replyError(chatID, "delete score", err)
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Score #%d deleted.", id))
}

func (b *Bot) handleStudy(ctx context.Context, chatID int64, args string) error {
	input, err := parseStudyArgs(args, model.NewDate(time.Now()))
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	id, err := b.store.Sessions.Add(ctx, input)
	if err != nil {
		return b.replyError(chatID, "add session", err)
	}
	return b.sendText(chatID, fmt.Sprintf("📚 Session #%d logged: %d min of %s.", id, input.DurationMinutes, escape(input.Subject)))
}

func (b *Bot) handleSessions(ctx context.Context, chatID int64) error {
	sessions, err := b.store.Sessions.List(ctx)
	if err != nil {
		return b.replyError(chatID, "list sessions", err)
	}
	if len(sessions) == 0 {
		return b.sendText(chatID, "No study sessions yet. Log one with /study.")
	}
	var sb strings.Builder
	sb.WriteString("📚 <b>Study sessions</b>\n")
	for _, s := range sessions {
		sb.WriteString(fmt.Sprintf("#%d %s · %s · %d min", s.ID, s.Date, escape(s.Subject), s.DurationMinutes))
		if s.Topic != "" {
			sb.WriteString(" · " + escape(s.Topic))
		}
		sb.WriteByte('\n')
	}
	return b.sendText(chatID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleAddGoal(ctx context.Context, chatID int64, args string) error {
	id, err := b.store.Goals.Add(ctx, model.GoalInput{Title: args})
	if err != nil {
		return b.replyError(chatID, "add goal", err)
	}
	return b.sendText(chatID, fmt.Sprintf("🎯 Goal #%d added.", id))
}

func (b *Bot) handleGoals(ctx context.Context, chatID int64) error {
	goals, err := b.store.Goals.List(ctx)
	if err != nil {
		return b.replyError(chatID, "list goals", err)
	}
	if len(goals) == 0 {
		return b.sendText(chatID, "No goals yet. Add one with /goal.")
	}
	var sb strings.Builder
	sb.WriteString("🎯 <b>Goals</b>\n")
	for _, g := range goals {
		mark := "▫️"
		if g.Completed {
			mark = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s #%d %s — %d%%", mark, g.ID, escape(g.Title), g.Progress))
		if g.TargetDate != nil {
			sb.WriteString(fmt.Sprintf(" (by %s)", g.TargetDate))
		}
		sb.WriteByte('\n')
	}
	return b.sendText(chatID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleProgress(ctx context.Context, chatID int64, args string) error {
	id, pct, err := parseProgressArgs(args)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	if err := b.store.Goals.UpdateProgress(ctx, id, pct); err != nil {
		return b.replyError(chatID, "update goal", err)
	}
	return b.sendText(chatID, fmt.Sprintf("🎯 Goal #%d at %d%%.", id, pct))
}

func (b *Bot) handleAddPlan(ctx context.Context, chatID int64, args string) error {
	input, err := parsePlanArgs(args)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	id, err := b.store.Plans.Add(ctx, input)
	if err != nil {
		return b.replyError(chatID, "add plan entry", err)
	}
	return b.sendText(chatID, fmt.Sprintf("🕒 Plan entry #%d added for %s.", id, input.Date))
}

func (b *Bot) handlePlans(ctx context.Context, chatID int64, args string) error {
	var day *model.Date
	if strings.TrimSpace(args) != "" {
		d, err := model.ParseDate(args)
		if err != nil {
			return b.sendText(chatID, userMessage(err))
		}
		day = &d
	}
	entries, err := b.store.Plans.List(ctx, day)
	if err != nil {
		return b.replyError(chatID, "list plan entries", err)
	}
	if len(entries) == 0 {
		return b.sendText(chatID, "Nothing planned. Add an entry with /plan.")
	}
	var sb strings.Builder
	sb.WriteString("🕒 <b>Plan</b>\n")
	var current model.Date
	for _, e := range entries {
		if !e.Date.Equal(current.Time) {
			current = e.Date
			sb.WriteString(fmt.Sprintf("<b>%s</b>\n", current))
		}
		sb.WriteString(service.FormatPlanEntry(e))
	}
	return b.sendText(chatID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleStats(ctx context.Context, chatID int64, args string) error {
	days, err := parseDays(args, 7)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	stats := b.analytics.ProductivityStats(ctx, days)
	text := fmt.Sprintf("📈 <b>Last %d days</b>\n%s", days, service.FormatStats(stats))
	return b.sendText(chatID, strings.TrimSpace(text))
}

func (b *Bot) handleBackup(ctx context.Context, chatID int64) error {
	path, err := b.backups.Run(ctx)
	if err != nil {
		return b.replyError(chatID, "backup", err)
	}
	return b.sendText(chatID, fmt.Sprintf("💾 Backup created: <code>%s</code>", escape(path)))
}

func (b *Bot) handleSettings(chatID int64) error {
	snapshot := b.settings.Snapshot()
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("⚙️ <b>Settings</b>\n")
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("• <code>%s</code>: %s\n", escape(k), escape(fmt.Sprint(snapshot[k]))))
	}
	return b.sendText(chatID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleSet(chatID int64, args string) error {
	key, value, err := parseSetArgs(args)
	if err != nil {
		return b.sendText(chatID, userMessage(err))
	}
	if err := b.settings.Set(key, value); err != nil {
		if errors.Is(err, model.ErrConfigWrite) {
			b.log.Error("save settings", zap.String("key", key), zap.Error(err))
		}
		return b.sendText(chatID, userMessage(err))
	}
	if key == config.KeyAutoBackup {
		b.log.Info("auto backup toggled", zap.Any("value", value))
	}
	return b.sendText(chatID, fmt.Sprintf("⚙️ <code>%s</code> updated.", escape(key)))
}
