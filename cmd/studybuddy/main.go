package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"study-buddy/internal/bot"
	"study-buddy/internal/config"
	"study-buddy/internal/logging"
	"study-buddy/internal/repository"
	"study-buddy/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := repository.Open(cfg.DatabasePath, repository.WithLogger(logger))
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer store.Close()

	settings := config.OpenSettings(cfg.SettingsPath, logger)

	analytics := service.NewAnalyticsService(store, settings, logger)
	scores := service.NewScoreService(store.Scores, settings)
	reminders := service.NewReminderService(store, analytics)
	backups := service.NewBackupService(store, settings, cfg.BackupDir, cfg.BackupKeep, logger)

	telegramBot, err := bot.New(cfg.TelegramToken, cfg.OwnerID, bot.Deps{
		Store:     store,
		Settings:  settings,
		Scores:    scores,
		Analytics: analytics,
		Reminders: reminders,
		Backups:   backups,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("bot", zap.Error(err))
	}

	scheduler := service.NewSchedulerService(time.Local, logger)
	if _, err := scheduler.ScheduleDaily("daily report", cfg.ReportTime, func() {
		if !settings.Bool(config.KeyNotifications, true) {
			return
		}
		jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDailyReport(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("daily report", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("schedule report", zap.Error(err))
	}
	if _, err := scheduler.ScheduleDaily("auto backup", cfg.BackupTime, func() {
		path, ran, err := backups.RunIfEnabled(ctx)
		switch {
		case err != nil:
			logger.Error("auto backup", zap.Error(err))
		case ran:
			logger.Info("auto backup done", zap.String("file", path))
		}
	}); err != nil {
		logger.Fatal("schedule backup", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info("study buddy started", zap.String("db", store.Path()), zap.String("settings", settings.Path()))
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot stopped with error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
