package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"study-buddy/internal/model"
)

const kindPlan = "plan entry"

// PlanRepository handles CRUD for daily plan entries.
type PlanRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func (r *PlanRepository) Add(ctx context.Context, input model.PlanEntryInput) (uint, error) {
	if err := model.Validate(input); err != nil {
		return 0, err
	}
	if input.Priority == 0 {
		input.Priority = model.PriorityMedium
	}
	entry := model.PlanEntry{
		Date:            input.Date,
		TaskTitle:       strings.TrimSpace(input.TaskTitle),
		TaskDescription: strings.TrimSpace(input.TaskDescription),
		TimeSlot:        strings.TrimSpace(input.TimeSlot),
		Priority:        input.Priority,
		CreatedAt:       r.now(),
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return 0, ioErr("create plan entry", err)
	}
	return entry.ID, nil
}

// List returns the entries of one day when day is set, otherwise all of them,
// latest day first and by time slot within a day.
func (r *PlanRepository) List(ctx context.Context, day *model.Date) ([]model.PlanEntry, error) {
	db := r.db.WithContext(ctx)
	if day != nil {
		db = db.Where("date = ?", *day)
	}
	entries := make([]model.PlanEntry, 0)
	err := db.Order("date DESC").Order("time_slot ASC").Order("priority DESC").Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, ioErr("list plan entries", err)
	}
	return entries, nil
}

func (r *PlanRepository) ToggleCompleted(ctx context.Context, id uint, completed bool) error {
	res := r.db.WithContext(ctx).Model(&model.PlanEntry{}).Where("id = ?", id).Update("completed", completed)
	if res.Error != nil {
		return ioErr("toggle plan entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return &model.NotFoundError{Kind: kindPlan, ID: id}
	}
	return nil
}

func (r *PlanRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.PlanEntry{}, id)
	if res.Error != nil {
		return ioErr("delete plan entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return &model.NotFoundError{Kind: kindPlan, ID: id}
	}
	return nil
}
