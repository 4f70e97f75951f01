package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"study-buddy/internal/model"
)

const kindTask = "task"

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// Add validates input and stores a new pending task.
func (r *TaskRepository) Add(ctx context.Context, input model.TaskInput) (uint, error) {
	if err := model.Validate(input); err != nil {
		return 0, err
	}
	if input.Priority == 0 {
		input.Priority = model.PriorityMedium
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	task := model.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Priority:    input.Priority,
		Category:    category,
		DueDate:     input.DueDate,
		CreatedAt:   r.now(),
	}
	if err := r.db.WithContext(ctx).Create(&task).Error; err != nil {
		return 0, ioErr("create task", err)
	}
	return task.ID, nil
}

// Get returns a task by id, archived or not.
func (r *TaskRepository) Get(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, notFound(kindTask, id, err)
	}
	return &task, nil
}

// List returns a snapshot of the tasks matching q.
func (r *TaskRepository) List(ctx context.Context, q model.TaskQuery) ([]model.Task, error) {
	db := r.db.WithContext(ctx).Model(&model.Task{})
	if !q.IncludeArchived {
		db = db.Where("archived = ?", false)
	}

	switch q.Filter {
	case model.FilterPending:
		db = db.Where("done = ?", false)
	case model.FilterCompleted:
		db = db.Where("done = ?", true)
	case model.FilterHighPriority:
		db = db.Where("priority >= ? AND done = ?", model.PriorityHigh, false)
	case model.FilterUrgent:
		db = db.Where("priority = ? AND done = ?", model.PriorityUrgent, false)
	}

	switch q.Order {
	case model.OrderNewest:
		db = db.Order("created_at DESC").Order("id DESC")
	case model.OrderDueDate:
		db = db.Order("due_date IS NULL").Order("due_date ASC").Order("priority DESC").Order("id ASC")
	default:
		db = db.Order("priority DESC").Order("created_at DESC").Order("id DESC")
	}

	tasks := make([]model.Task, 0)
	if err := db.Find(&tasks).Error; err != nil {
		return nil, ioErr("list tasks", err)
	}
	return tasks, nil
}

// ToggleDone marks a task done or pending. Setting the current value again
// leaves completed_at untouched. Archived tasks cannot change state.
func (r *TaskRepository) ToggleDone(ctx context.Context, id uint, done bool) error {
	task, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if task.Done == done {
		return nil
	}
	if task.Archived {
		return &model.ValidationError{Field: "archived", Reason: "archived tasks cannot change state"}
	}

	var completedAt *time.Time
	if done {
		now := r.now()
		completedAt = &now
	}
	err = r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).
		Updates(map[string]any{"done": done, "completed_at": completedAt}).Error
	if err != nil {
		return ioErr("toggle task", err)
	}
	return nil
}

// Delete removes a task permanently.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return ioErr("delete task", res.Error)
	}
	if res.RowsAffected == 0 {
		return &model.NotFoundError{Kind: kindTask, ID: id}
	}
	return nil
}

// ClearCompleted deletes every done task, archived ones included, and returns how many went.
func (r *TaskRepository) ClearCompleted(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("done = ?", true).Delete(&model.Task{})
	if res.Error != nil {
		return 0, ioErr("clear completed tasks", res.Error)
	}
	return res.RowsAffected, nil
}

// ArchiveOld archives tasks created more than olderThanDays ago. With
// requireDone only completed tasks qualify. Already archived rows are not
// counted, so repeating the call returns 0.
func (r *TaskRepository) ArchiveOld(ctx context.Context, olderThanDays int, requireDone bool) (int64, error) {
	if olderThanDays < 0 {
		return 0, &model.ValidationError{Field: "older_than_days", Reason: "must not be negative"}
	}
	cutoff := r.now().AddDate(0, 0, -olderThanDays)

	db := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("archived = ? AND created_at < ?", false, cutoff)
	if requireDone {
		db = db.Where("done = ?", true)
	}
	res := db.Update("archived", true)
	if res.Error != nil {
		return 0, ioErr("archive tasks", res.Error)
	}
	return res.RowsAffected, nil
}

// CountCompletedBetween counts tasks whose completion time falls in [from, to].
func (r *TaskRepository) CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("done = ? AND completed_at >= ? AND completed_at <= ?", true, from.UTC(), to.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, ioErr("count completed tasks", err)
	}
	return count, nil
}
