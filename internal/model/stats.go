package model

import "sort"

// ProductivityStats summarises activity over a trailing window of days.
type ProductivityStats struct {
	CompletedTasks    int64
	StudyHours        float64
	AverageScore      float64
	ProductivityScore float64
}

// GoalProgress compares recent study time against the advisory targets.
type GoalProgress struct {
	TodayMinutes   int64
	DailyMinutes   int
	WeekSessions   int64
	WeeklySessions int
}

// GradeThreshold is the minimum percentage that earns Letter.
type GradeThreshold struct {
	Letter  string
	Minimum float64
}

// GradeScale is ordered from the highest threshold to the lowest.
type GradeScale []GradeThreshold

// NewGradeScale builds a scale from a letter to minimum percentage mapping.
func NewGradeScale(m map[string]float64) GradeScale {
	scale := make(GradeScale, 0, len(m))
	for letter, minimum := range m {
		scale = append(scale, GradeThreshold{Letter: letter, Minimum: minimum})
	}
	sort.Slice(scale, func(i, j int) bool {
		if scale[i].Minimum != scale[j].Minimum {
			return scale[i].Minimum > scale[j].Minimum
		}
		return scale[i].Letter < scale[j].Letter
	})
	return scale
}

// Grade returns the letter for the highest threshold not above percent,
// or "" when the scale is empty or nothing matches.
func (s GradeScale) Grade(percent float64) string {
	for _, t := range s {
		if percent >= t.Minimum {
			return t.Letter
		}
	}
	return ""
}
