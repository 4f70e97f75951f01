package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"study-buddy/internal/model"
)

const kindGoal = "goal"

// GoalRepository handles CRUD for goals.
type GoalRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func (r *GoalRepository) Add(ctx context.Context, input model.GoalInput) (uint, error) {
	if err := model.Validate(input); err != nil {
		return 0, err
	}
	goal := model.Goal{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		TargetDate:  input.TargetDate,
		Category:    strings.TrimSpace(input.Category),
		Progress:    input.Progress,
		Completed:   input.Progress == 100,
		CreatedAt:   r.now(),
	}
	if err := r.db.WithContext(ctx).Create(&goal).Error; err != nil {
		return 0, ioErr("create goal", err)
	}
	return goal.ID, nil
}

// List orders goals by target date, latest first, undated goals last.
func (r *GoalRepository) List(ctx context.Context) ([]model.Goal, error) {
	goals := make([]model.Goal, 0)
	err := r.db.WithContext(ctx).
		Order("target_date IS NULL").Order("target_date DESC").Order("created_at DESC").Order("id DESC").
		Find(&goals).Error
	if err != nil {
		return nil, ioErr("list goals", err)
	}
	return goals, nil
}

// UpdateProgress sets progress; reaching 100 completes the goal and anything
// lower reopens it.
func (r *GoalRepository) UpdateProgress(ctx context.Context, id uint, progress int) error {
	if progress < 0 || progress > 100 {
		return &model.ValidationError{Field: "progress", Reason: "must be between 0 and 100"}
	}
	res := r.db.WithContext(ctx).Model(&model.Goal{}).Where("id = ?", id).
		Updates(map[string]any{"progress": progress, "completed": progress == 100})
	if res.Error != nil {
		return ioErr("update goal progress", res.Error)
	}
	if res.RowsAffected == 0 {
		return &model.NotFoundError{Kind: kindGoal, ID: id}
	}
	return nil
}

func (r *GoalRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Goal{}, id)
	if res.Error != nil {
		return ioErr("delete goal", res.Error)
	}
	if res.RowsAffected == 0 {
		return &model.NotFoundError{Kind: kindGoal, ID: id}
	}
	return nil
}
