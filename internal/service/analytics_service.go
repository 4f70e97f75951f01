package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"study-buddy/internal/config"
	"study-buddy/internal/model"
	"study-buddy/internal/repository"
)

// AnalyticsService computes read-only statistics over the record store.
type AnalyticsService struct {
	store    *repository.Store
	settings *config.Settings
	log      *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService wraps store. settings may be nil, in which case the
// default study targets are used.
func NewAnalyticsService(store *repository.Store, settings *config.Settings, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{store: store, settings: settings, log: logger.Named("analytics"), now: time.Now}
}

// ProductivityStats summarises the trailing days up to now.
func (s *AnalyticsService) ProductivityStats(ctx context.Context, days int) model.ProductivityStats {
	return s.ProductivityStatsAt(ctx, s.now(), days)
}

// ProductivityStatsAt summarises the window [now-days, now]. Query failures
// are logged and yield zeroed stats.
func (s *AnalyticsService) ProductivityStatsAt(ctx context.Context, now time.Time, days int) model.ProductivityStats {
	stats, err := s.productivity(ctx, now, days)
	if err != nil {
		s.log.Error("productivity stats", zap.Int("days", days), zap.Error(err))
		return model.ProductivityStats{}
	}
	return stats
}

func (s *AnalyticsService) productivity(ctx context.Context, now time.Time, days int) (model.ProductivityStats, error) {
	start := now.AddDate(0, 0, -days)
	fromDay, toDay := model.NewDate(start), model.NewDate(now)

	completed, err := s.store.Tasks.CountCompletedBetween(ctx, start, now)
	if err != nil {
		return model.ProductivityStats{}, err
	}
	minutes, err := s.store.Sessions.SumMinutesBetween(ctx, fromDay, toDay)
	if err != nil {
		return model.ProductivityStats{}, err
	}
	avg, err := s.store.Scores.AveragePercentBetween(ctx, fromDay, toDay)
	if err != nil {
		return model.ProductivityStats{}, err
	}

	return model.ProductivityStats{
		CompletedTasks:    completed,
		StudyHours:        round1(float64(minutes) / 60),
		AverageScore:      round1(avg),
		ProductivityScore: ProductivityScore(completed, minutes),
	}, nil
}

// ProductivityScore is completed*10 + minutes/12, capped at 100.
func ProductivityScore(completedTasks, studyMinutes int64) float64 {
	return math.Min(100, float64(completedTasks)*10+float64(studyMinutes)/12)
}

// StudyGoalProgress compares today's minutes and the last seven days of
// sessions against the study_session_goals setting. Failures yield zero counts.
func (s *AnalyticsService) StudyGoalProgress(ctx context.Context, now time.Time) model.GoalProgress {
	progress := model.GoalProgress{DailyMinutes: 120, WeeklySessions: 5}
	if s.settings != nil {
		progress.DailyMinutes, progress.WeeklySessions = s.settings.StudyGoals()
	}

	today := model.NewDate(now)
	minutes, err := s.store.Sessions.SumMinutesBetween(ctx, today, today)
	if err != nil {
		s.log.Error("study minutes today", zap.Error(err))
		return progress
	}
	sessions, err := s.store.Sessions.CountBetween(ctx, today.AddDays(-6), today)
	if err != nil {
		s.log.Error("study sessions this week", zap.Error(err))
		return progress
	}
	progress.TodayMinutes = minutes
	progress.WeekSessions = sessions
	return progress
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
