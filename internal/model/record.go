package model

import "time"

// DefaultMaxScore is the scale used when a test score has no explicit maximum.
const DefaultMaxScore = 100

// TestScore is a graded test result.
type TestScore struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	Subject   string  `gorm:"not null;index"`
	TestName  string  `gorm:"not null"`
	Score     float64 `gorm:"not null"`
	MaxScore  float64 `gorm:"not null;default:100"`
	Grade     string
	Date      Date `gorm:"not null;index"`
	Semester  string
	Notes     string
	CreatedAt time.Time `gorm:"not null"`
}

func (TestScore) TableName() string { return "test_scores" }

// Percent returns the score as a percentage of MaxScore.
func (s TestScore) Percent() float64 {
	if s.MaxScore <= 0 {
		return 0
	}
	return s.Score / s.MaxScore * 100
}

type TestScoreInput struct {
	Subject  string  `validate:"notblank,max=100"`
	TestName string  `validate:"notblank,max=200"`
	Score    float64 `validate:"gte=0,ltefield=MaxScore"`
	MaxScore float64 `validate:"gt=0"`
	Grade    string
	Date     Date   `validate:"required"`
	Semester string `validate:"max=50"`
	Notes    string `validate:"max=2000"`
}

// StudySession records time spent studying one subject on one day.
type StudySession struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	Subject         string `gorm:"not null"`
	Topic           string
	DurationMinutes int `gorm:"not null"`
	FocusRating     *int
	Notes           string
	Date            Date      `gorm:"not null;index"`
	CreatedAt       time.Time `gorm:"not null"`
}

func (StudySession) TableName() string { return "study_sessions" }

type StudySessionInput struct {
	Subject         string `validate:"notblank,max=100"`
	Topic           string `validate:"max=200"`
	DurationMinutes int    `validate:"gt=0,lte=1440"`
	FocusRating     *int   `validate:"omitempty,min=1,max=10"`
	Notes           string `validate:"max=2000"`
	Date            Date   `validate:"required"`
}

// Goal is a longer running target with a percentage of progress.
type Goal struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"not null"`
	Description string
	TargetDate  *Date
	Category    string
	Progress    int       `gorm:"not null;default:0"`
	Completed   bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (Goal) TableName() string { return "goals" }

type GoalInput struct {
	Title       string `validate:"notblank,max=200"`
	Description string `validate:"max=2000"`
	TargetDate  *Date
	Category    string `validate:"max=100"`
	Progress    int    `validate:"min=0,max=100"`
}

// PlanEntry is one slot of a daily plan.
type PlanEntry struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	Date            Date   `gorm:"not null;index"`
	TaskTitle       string `gorm:"not null"`
	TaskDescription string
	TimeSlot        string
	Priority        Priority  `gorm:"not null;default:2"`
	Completed       bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"not null"`
}

func (PlanEntry) TableName() string { return "daily_plans" }

type PlanEntryInput struct {
	Date            Date     `validate:"required"`
	TaskTitle       string   `validate:"notblank,max=200"`
	TaskDescription string   `validate:"max=2000"`
	TimeSlot        string   `validate:"max=50"`
	Priority        Priority `validate:"omitempty,min=1,max=4"`
}

// ScoreOrder selects the ordering of a test score listing.
type ScoreOrder int

const (
	// ScoreOrderDate lists the most recent tests first.
	ScoreOrderDate ScoreOrder = iota
	ScoreOrderSubject
	ScoreOrderPercent
)
