package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"gorm.io/gorm"

	"study-buddy/internal/model"
)

const kindScore = "test score"

// ScoreRepository handles CRUD for test scores.
type ScoreRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// Add validates input and stores a test score. A zero MaxScore means 100.
func (r *ScoreRepository) Add(ctx context.Context, input model.TestScoreInput) (uint, error) {
	if input.MaxScore == 0 {
		input.MaxScore = model.DefaultMaxScore
	}
	if err := model.Validate(input); err != nil {
		return 0, err
	}

	score := model.TestScore{
		Subject:   strings.TrimSpace(input.Subject),
		TestName:  strings.TrimSpace(input.TestName),
		Score:     input.Score,
		MaxScore:  input.MaxScore,
		Grade:     strings.TrimSpace(input.Grade),
		Date:      input.Date,
		Semester:  strings.TrimSpace(input.Semester),
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: r.now(),
	}
	if err := r.db.WithContext(ctx).Create(&score).Error; err != nil {
		return 0, ioErr("create test score", err)
	}
	return score.ID, nil
}

// List returns every test score in the requested order.
func (r *ScoreRepository) List(ctx context.Context, order model.ScoreOrder) ([]model.TestScore, error) {
	db := r.db.WithContext(ctx)
	switch order {
	case model.ScoreOrderSubject:
		db = db.Order("subject ASC").Order("date DESC")
	case model.ScoreOrderPercent:
		db = db.Order("score * 1.0 / max_score DESC").Order("date DESC")
	default:
		db = db.Order("date DESC").Order("created_at DESC")
	}
	scores := make([]model.TestScore, 0)
	if err := db.Order("id DESC").Find(&scores).Error; err != nil {
		return nil, ioErr("list test scores", err)
	}
	return scores, nil
}

// Delete removes a test score permanently.
func (r *ScoreRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.TestScore{}, id)
	if res.Error != nil {
		return ioErr("delete test score", res.Error)
	}
	if res.RowsAffected == 0 {
		return &model.NotFoundError{Kind: kindScore, ID: id}
	}
	return nil
}

// AveragePercentBetween averages score/max_score*100 over tests dated in [from, to].
// It returns 0 when no test falls in the range.
func (r *ScoreRepository) AveragePercentBetween(ctx context.Context, from, to model.Date) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).Model(&model.TestScore{}).
		Select("AVG(score * 100.0 / max_score)").
		Where("date >= ? AND date <= ?", from, to).
		Scan(&avg).Error
	if err != nil {
		return 0, ioErr("average test score", err)
	}
	return avg.Float64, nil
}
