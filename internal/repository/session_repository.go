package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"gorm.io/gorm"

	"study-buddy/internal/model"
)

const kindSession = "study session"

// SessionRepository handles CRUD for study sessions.
type SessionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func (r *SessionRepository) Add(ctx context.Context, input model.StudySessionInput) (uint, error) {
	if err := model.Validate(input); err != nil {
		return 0, err
	}
	session := model.StudySession{
		Subject:         strings.TrimSpace(input.Subject),
		Topic:           strings.TrimSpace(input.Topic),
		DurationMinutes: input.DurationMinutes,
		FocusRating:     input.FocusRating,
		Notes:           strings.TrimSpace(input.Notes),
		Date:            input.Date,
		CreatedAt:       r.now(),
	}
	if err := r.db.WithContext(ctx).Create(&session).Error; err != nil {
		return 0, ioErr("create study session", err)
	}
	return session.ID, nil
}

// List returns all sessions, latest day first.
func (r *SessionRepository) List(ctx context.Context) ([]model.StudySession, error) {
	sessions := make([]model.StudySession, 0)
	err := r.db.WithContext(ctx).Order("date DESC").Order("created_at DESC").Order("id DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, ioErr("list study sessions", err)
	}
	return sessions, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.StudySession{}, id)
	if res.Error != nil {
		return ioErr("delete study session", res.Error)
	}
	if res.RowsAffected == 0 {
		return &model.NotFoundError{Kind: kindSession, ID: id}
	}
	return nil
}

// SumMinutesBetween totals duration_minutes of sessions dated in [from, to].
func (r *SessionRepository) SumMinutesBetween(ctx context.Context, from, to model.Date) (int64, error) {
	var sum sql.NullInt64
	err := r.db.WithContext(ctx).Model(&model.StudySession{}).
		Select("SUM(duration_minutes)").
		Where("date >= ? AND date <= ?", from, to).
		Scan(&sum).Error
	if err != nil {
		return 0, ioErr("sum study minutes", err)
	}
	return sum.Int64, nil
}

// CountBetween counts sessions dated in [from, to].
func (r *SessionRepository) CountBetween(ctx context.Context, from, to model.Date) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.StudySession{}).
		Where("date >= ? AND date <= ?", from, to).
		Count(&count).Error
	if err != nil {
		return 0, ioErr("count study sessions", err)
	}
	return count, nil
}
