package model

import (
	"fmt"
	"strings"
	"time"
)

// Priority ranks tasks and plan entries; higher is more pressing.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

// DefaultCategory is used when a task is added without a category.
const DefaultCategory = "General"

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// Valid reports whether p is one of the four known levels.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityUrgent
}

// ParsePriority accepts a level name (any case) or its number.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low", "1":
		return PriorityLow, nil
	case "medium", "2", "":
		return PriorityMedium, nil
	case "high", "3":
		return PriorityHigh, nil
	case "urgent", "4":
		return PriorityUrgent, nil
	}
	return 0, &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", raw)}
}

// Task is a to-do item. CompletedAt is set exactly while Done is true.
type Task struct {
	ID          uint     `gorm:"primaryKey;autoIncrement"`
	Title       string   `gorm:"not null"`
	Description string
	Priority    Priority `gorm:"not null;default:2;index"`
	Category    string   `gorm:"not null;default:General"`
	DueDate     *Date
	CreatedAt   time.Time `gorm:"not null;index"`
	CompletedAt *time.Time
	Done        bool `gorm:"not null;default:false"`
	Archived    bool `gorm:"not null;default:false"`
}

func (Task) TableName() string { return "todos" }

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string   `validate:"notblank,max=200"`
	Description string   `validate:"max=2000"`
	Priority    Priority `validate:"omitempty,min=1,max=4"`
	Category    string   `validate:"max=100"`
	DueDate     *Date
}

// TaskFilter selects a subset of non-archived tasks.
type TaskFilter int

const (
	FilterAll TaskFilter = iota
	FilterPending
	FilterCompleted
	FilterHighPriority
	FilterUrgent
)

func (f TaskFilter) String() string {
	switch f {
	case FilterPending:
		return "pending"
	case FilterCompleted:
		return "completed"
	case FilterHighPriority:
		return "high"
	case FilterUrgent:
		return "urgent"
	default:
		return "all"
	}
}

// ParseTaskFilter maps the names returned by TaskFilter.String back to filters.
func ParseTaskFilter(raw string) (TaskFilter, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return FilterAll, nil
	case "pending":
		return FilterPending, nil
	case "completed", "done":
		return FilterCompleted, nil
	case "high", "high priority", "high_priority":
		return FilterHighPriority, nil
	case "urgent":
		return FilterUrgent, nil
	}
	return FilterAll, &ValidationError{Field: "filter", Reason: fmt.Sprintf("unknown filter %q", raw)}
}

// TaskOrder selects the ordering of a task listing.
type TaskOrder int

const (
	// OrderPriority sorts by priority, then newest first.
	OrderPriority TaskOrder = iota
	OrderNewest
	// OrderDueDate sorts by due date with undated tasks last.
	OrderDueDate
)

// TaskQuery describes a task listing.
type TaskQuery struct {
	Filter          TaskFilter
	Order           TaskOrder
	IncludeArchived bool
}
