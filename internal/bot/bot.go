package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"study-buddy/internal/config"
	"study-buddy/internal/model"
	"study-buddy/internal/repository"
	"study-buddy/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stagePriority
	stageCategory
	stageDueDate
)

const (
	cbCompletePrefix = "complete:"
	cbUndoPrefix     = "undo:"
	cbDeletePrefix   = "delete:"
)

type conversationState struct {
	stage conversationStage
	input model.TaskInput
}

// Deps bundles what the bot needs from the rest of the app.
type Deps struct {
	Store     *repository.Store
	Settings  *config.Settings
	Scores    *service.ScoreService
	Analytics *service.AnalyticsService
	Reminders *service.ReminderService
	Backups   *service.BackupService
	Logger    *zap.Logger
}

// Bot serves a single owner chat on top of the record store.
type Bot struct {
	api       *tgbotapi.BotAPI
	ownerID   int64
	store     *repository.Store
	settings  *config.Settings
	scores    *service.ScoreService
	analytics *service.AnalyticsService
	reminders *service.ReminderService
	backups   *service.BackupService
	log       *zap.Logger

	mu           sync.Mutex
	conversation *conversationState
}

func New(token string, ownerID int64, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("bot")
	logger.Info("bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:       api,
		ownerID:   ownerID,
		store:     deps.Store,
		settings:  deps.Settings,
		scores:    deps.Scores,
		analytics: deps.Analytics,
		reminders: deps.Reminders,
		backups:   deps.Backups,
		log:       logger,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if !b.isOwner(update.CallbackQuery.From) {
				continue
			}
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Error("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() || !b.isOwner(update.Message.From) {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Error("handle message", zap.Error(err))
			}
		}
	}

	return ctx.Err()
}

func (b *Bot) isOwner(from *tgbotapi.User) bool {
	if from == nil || from.ID != b.ownerID {
		if from != nil {
			b.log.Warn("ignoring update from stranger", zap.Int64("user", from.ID))
		}
		return false
	}
	return true
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.IsCommand() {
		b.log.Debug("command", zap.String("command", msg.Command()), zap.String("args", msg.CommandArguments()))
		return b.runCommand(ctx, msg.Chat.ID, msg.Command(), msg.CommandArguments())
	}
	if isCancelInput(msg.Text) {
		b.clearConversation()
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	}
	if b.hasConversation() {
		return b.handleConversation(ctx, msg)
	}
	if cmd, ok := menuAliases[strings.TrimSpace(msg.Text)]; ok {
		return b.runCommand(ctx, msg.Chat.ID, cmd, "")
	}
	return b.sendText(msg.Chat.ID, "I did not get that. Use /newtask to add a task or /help for the command list.")
}

func (b *Bot) startNewTaskConversation(chatID int64) error {
	b.setConversation(&conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(chatID, "🆕 New task.\n<b>Step 1:</b> what is it called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation()
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The title cannot be empty. What is the task called?", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Add a short description (or skip).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.input.Description = text
		}
		state.stage = stagePriority
		return b.sendWithReplyMarkup(msg.Chat.ID, "🚦 Pick a priority.", priorityKeyboard())
	case stagePriority:
		priority := model.PriorityMedium
		if !isSkipInput(text) {
			p, err := model.ParsePriority(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Choose Low, Medium, High or Urgent.", priorityKeyboard())
			}
			priority = p
		}
		state.input.Priority = priority
		state.stage = stageCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 Category? (skip for General)", categoryKeyboard())
	case stageCategory:
		if !isSkipInput(text) {
			state.input.Category = text
		}
		state.stage = stageDueDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏰ Due date as <code>2025-11-30</code> (or skip).", skipKeyboard())
	case stageDueDate:
		if !isSkipInput(text) {
			due, err := model.ParseDate(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Cannot read that date. Use <code>2025-11-30</code> or skip.", skipKeyboard())
			}
			state.input.DueDate = &due
		}
		b.clearConversation()
		return b.finishTaskCreation(ctx, msg.Chat.ID, state.input)
	default:
		b.clearConversation()
		return b.sendText(msg.Chat.ID, "Dialog reset. Start again with /newtask.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, chatID int64, input model.TaskInput) error {
	id, err := b.store.Tasks.Add(ctx, input)
	if err != nil {
		return b.replyError(chatID, "add task", err)
	}
	task, err := b.store.Tasks.Get(ctx, id)
	if err != nil {
		return b.replyError(chatID, "get task", err)
	}
	b.log.Info("task created", zap.Uint("id", task.ID), zap.Stringer("priority", task.Priority))

	var summary strings.Builder
	summary.WriteString("✅ <b>Task saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> %d\n", task.ID))
	summary.WriteString(fmt.Sprintf("• <b>Title:</b> %s\n", escape(task.Title)))
	summary.WriteString(fmt.Sprintf("• <b>Priority:</b> %s\n", task.Priority))
	summary.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", escape(task.Category)))
	if task.Description != "" {
		summary.WriteString(fmt.Sprintf("• <b>Description:</b> %s\n", escape(task.Description)))
	}
	if task.DueDate != nil {
		summary.WriteString(fmt.Sprintf("• <b>Due:</b> %s\n", task.DueDate))
	}
	if err := b.sendText(chatID, strings.TrimSpace(summary.String())); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, model.TaskQuery{Filter: model.FilterPending})
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64, q model.TaskQuery) error {
	tasks, err := b.store.Tasks.List(ctx, q)
	if err != nil {
		return b.replyError(chatID, "list tasks", err)
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, fmt.Sprintf("No %s tasks. Add one with /newtask.", q.Filter))
	}

	today := model.NewDate(time.Now())
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>Tasks (%s)</b>\n\n", q.Filter))

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		builder.WriteString(service.FormatTask(task, today))
		if task.Done {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("↩️ #%d · %s", task.ID, shortTitle(task.Title, 20)), cbUndoPrefix+strconv.FormatUint(uint64(task.ID), 10)),
				tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+strconv.FormatUint(uint64(task.ID), 10)),
			))
			continue
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ #%d · %s", task.ID, shortTitle(task.Title, 20)), cbCompletePrefix+strconv.FormatUint(uint64(task.ID), 10)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+strconv.FormatUint(uint64(task.ID), 10)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("callback ack", zap.Error(err))
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbCompletePrefix), strings.HasPrefix(data, cbUndoPrefix):
		done := strings.HasPrefix(data, cbCompletePrefix)
		id, err := parseID(strings.TrimPrefix(strings.TrimPrefix(data, cbCompletePrefix), cbUndoPrefix))
		if err != nil {
			return b.sendText(chatID, userMessage(err))
		}
		if err := b.store.Tasks.ToggleDone(ctx, id, done); err != nil {
			return b.replyError(chatID, "toggle task", err)
		}
		return b.sendTaskList(ctx, chatID, model.TaskQuery{})
	case strings.HasPrefix(data, cbDeletePrefix):
		id, err := parseID(strings.TrimPrefix(data, cbDeletePrefix))
		if err != nil {
			return b.sendText(chatID, userMessage(err))
		}
		if err := b.store.Tasks.Delete(ctx, id); err != nil {
			return b.replyError(chatID, "delete task", err)
		}
		return b.sendTaskList(ctx, chatID, model.TaskQuery{})
	default:
		b.log.Warn("unknown callback", zap.String("data", data))
		return nil
	}
}

// SendDailyReport sends the daily summary to the owner.
func (b *Bot) SendDailyReport(ctx context.Context) error {
	text, err := b.reminders.DailySummary(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}
	return b.sendText(b.ownerID, text)
}

// replyError logs err unless it is a caller mistake and tells the user what happened.
func (b *Bot) replyError(chatID int64, op string, err error) error {
	if !errors.Is(err, model.ErrValidation) && !errors.Is(err, model.ErrNotFound) {
		b.log.Error(op, zap.Error(err))
	}
	return b.sendText(chatID, userMessage(err))
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) setConversation(state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversation = state
}

func (b *Bot) getConversation() *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversation
}

func (b *Bot) hasConversation() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversation != nil
}

func (b *Bot) clearConversation() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversation = nil
}

func escape(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

func shortTitle(title string, maxLen int) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) <= maxLen {
		return string(runes)
	}
	return string(runes[:maxLen-1]) + "…"
}
