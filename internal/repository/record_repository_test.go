package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-buddy/internal/model"
)

func intPtr(v int) *int { return &v }

func TestScoreBounds(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	day := model.DateOf(2026, 3, 10)

	tests := []struct {
		name    string
		score   float64
		max     float64
		wantErr bool
	}{
		{name: "negative", score: -1, max: 100, wantErr: true},
		{name: "above max", score: 101, max: 100, wantErr: true},
		{name: "zero", score: 0, max: 100},
		{name: "full marks", score: 100, max: 100},
		{name: "default max", score: 55},
		{name: "custom max", score: 18, max: 20},
		{name: "negative max", score: 0, max: -5, wantErr: true},
	}
	stored := 0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Scores.Add(ctx, model.TestScoreInput{
				Subject: "Physics", TestName: "Midterm", Score: tt.score, MaxScore: tt.max, Date: day,
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrValidation)
				return
			}
			require.NoError(t, err)
			stored++
		})
	}

	scores, err := s.Scores.List(ctx, model.ScoreOrderDate)
	require.NoError(t, err)
	assert.Len(t, scores, stored)
}

func TestScoreRequiresSubjectAndDate(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Scores.Add(ctx, model.TestScoreInput{Subject: " ", TestName: "Quiz", Score: 1, Date: model.DateOf(2026, 1, 1)})
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "subject", vErr.Field)

	_, err = s.Scores.Add(ctx, model.TestScoreInput{Subject: "Math", TestName: "Quiz", Score: 1})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "date", vErr.Field)
}

func TestScoreDefaultMaxAndOrdering(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Scores.Add(ctx, model.TestScoreInput{Subject: "Math", TestName: "Quiz 1", Score: 60, Date: model.DateOf(2026, 3, 1)})
	require.NoError(t, err)
	_, err = s.Scores.Add(ctx, model.TestScoreInput{Subject: "Biology", TestName: "Quiz 2", Score: 18, MaxScore: 20, Date: model.DateOf(2026, 2, 1)})
	require.NoError(t, err)

	byDate, err := s.Scores.List(ctx, model.ScoreOrderDate)
	require.NoError(t, err)
	require.Len(t, byDate, 2)
	assert.Equal(t, "Math", byDate[0].Subject)
	assert.Equal(t, float64(model.DefaultMaxScore), byDate[0].MaxScore)

	bySubject, err := s.Scores.List(ctx, model.ScoreOrderSubject)
	require.NoError(t, err)
	assert.Equal(t, "Biology", bySubject[0].Subject)

	byPercent, err := s.Scores.List(ctx, model.ScoreOrderPercent)
	require.NoError(t, err)
	assert.Equal(t, "Biology", byPercent[0].Subject)
	assert.InDelta(t, 90.0, byPercent[0].Percent(), 0.001)
}

func TestScoreAveragePercentBetween(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	avg, err := s.Scores.AveragePercentBetween(ctx, model.DateOf(2026, 1, 1), model.DateOf(2026, 12, 31))
	require.NoError(t, err)
	assert.Zero(t, avg)

	_, err = s.Scores.Add(ctx, model.TestScoreInput{Subject: "Math", TestName: "A", Score: 80, Date: model.DateOf(2026, 3, 1)})
	require.NoError(t, err)
	_, err = s.Scores.Add(ctx, model.TestScoreInput{Subject: "Math", TestName: "B", Score: 45, MaxScore: 50, Date: model.DateOf(2026, 3, 5)})
	require.NoError(t, err)
	_, err = s.Scores.Add(ctx, model.TestScoreInput{Subject: "Math", TestName: "C", Score: 10, Date: model.DateOf(2025, 3, 5)})
	require.NoError(t, err)

	avg, err = s.Scores.AveragePercentBetween(ctx, model.DateOf(2026, 3, 1), model.DateOf(2026, 3, 5))
	require.NoError(t, err)
	assert.InDelta(t, 85.0, avg, 0.001)
}

func TestScoreDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Scores.Add(ctx, model.TestScoreInput{Subject: "Art", TestName: "Sketch", Score: 9, MaxScore: 10, Date: model.DateOf(2026, 3, 1)})
	require.NoError(t, err)
	require.NoError(t, s.Scores.Delete(ctx, id))
	assert.ErrorIs(t, s.Scores.Delete(ctx, id), model.ErrNotFound)
}

func TestStudySessions(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Sessions.Add(ctx, model.StudySessionInput{Subject: "Math", DurationMinutes: 0, Date: model.DateOf(2026, 3, 1)})
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "duration_minutes", vErr.Field)

	_, err = s.Sessions.Add(ctx, model.StudySessionInput{Subject: "Math", DurationMinutes: 30, FocusRating: intPtr(11), Date: model.DateOf(2026, 3, 1)})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "focus_rating", vErr.Field)

	first, err := s.Sessions.Add(ctx, model.StudySessionInput{Subject: "Math", Topic: "Limits", DurationMinutes: 90, FocusRating: intPtr(8), Date: model.DateOf(2026, 3, 1)})
	require.NoError(t, err)
	_, err = s.Sessions.Add(ctx, model.StudySessionInput{Subject: "History", DurationMinutes: 30, Date: model.DateOf(2026, 3, 3)})
	require.NoError(t, err)
	_, err = s.Sessions.Add(ctx, model.StudySessionInput{Subject: "History", DurationMinutes: 45, Date: model.DateOf(2026, 2, 1)})
	require.NoError(t, err)

	sessions, err := s.Sessions.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "2026-03-03", sessions[0].Date.String())
	assert.Equal(t, "Limits", sessions[1].Topic)
	require.NotNil(t, sessions[1].FocusRating)
	assert.Equal(t, 8, *sessions[1].FocusRating)
	assert.Nil(t, sessions[0].FocusRating)

	from, to := model.DateOf(2026, 3, 1), model.DateOf(2026, 3, 7)
	minutes, err := s.Sessions.SumMinutesBetween(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(120), minutes)

	count, err := s.Sessions.CountBetween(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	none, err := s.Sessions.SumMinutesBetween(ctx, model.DateOf(2020, 1, 1), model.DateOf(2020, 1, 2))
	require.NoError(t, err)
	assert.Zero(t, none)

	require.NoError(t, s.Sessions.Delete(ctx, first))
	assert.ErrorIs(t, s.Sessions.Delete(ctx, first), model.ErrNotFound)
}

func TestGoals(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Goals.Add(ctx, model.GoalInput{Title: "Overreach", Progress: 101})
	assert.ErrorIs(t, err, model.ErrValidation)

	target := model.DateOf(2026, 6, 1)
	dated, err := s.Goals.Add(ctx, model.GoalInput{Title: "Pass finals", TargetDate: &target, Progress: 40})
	require.NoError(t, err)
	undated, err := s.Goals.Add(ctx, model.GoalInput{Title: "Learn Spanish"})
	require.NoError(t, err)
	done, err := s.Goals.Add(ctx, model.GoalInput{Title: "Already there", Progress: 100})
	require.NoError(t, err)

	goals, err := s.Goals.List(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, dated, goals[0].ID)
	require.NotNil(t, goals[0].TargetDate)
	assert.Equal(t, "2026-06-01", goals[0].TargetDate.String())
	for _, g := range goals {
		if g.ID == done {
			assert.True(t, g.Completed)
		}
	}

	require.NoError(t, s.Goals.UpdateProgress(ctx, undated, 100))
	require.NoError(t, s.Goals.UpdateProgress(ctx, done, 50))
	goals, err = s.Goals.List(ctx)
	require.NoError(t, err)
	for _, g := range goals {
		switch g.ID {
		case undated:
			assert.True(t, g.Completed)
			assert.Equal(t, 100, g.Progress)
		case done:
			assert.False(t, g.Completed)
			assert.Equal(t, 50, g.Progress)
		}
	}

	assert.ErrorIs(t, s.Goals.UpdateProgress(ctx, dated, -1), model.ErrValidation)
	assert.ErrorIs(t, s.Goals.UpdateProgress(ctx, 999, 10), model.ErrNotFound)

	require.NoError(t, s.Goals.Delete(ctx, dated))
	assert.ErrorIs(t, s.Goals.Delete(ctx, dated), model.ErrNotFound)
}

func TestPlanEntries(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	today := model.DateOf(2026, 3, 15)
	tomorrow := today.AddDays(1)

	_, err := s.Plans.Add(ctx, model.PlanEntryInput{Date: today, TaskTitle: ""})
	assert.ErrorIs(t, err, model.ErrValidation)

	afternoon, err := s.Plans.Add(ctx, model.PlanEntryInput{Date: today, TaskTitle: "Lab report", TimeSlot: "14:00"})
	require.NoError(t, err)
	_, err = s.Plans.Add(ctx, model.PlanEntryInput{Date: today, TaskTitle: "Review notes", TimeSlot: "09:00", Priority: model.PriorityHigh})
	require.NoError(t, err)
	_, err = s.Plans.Add(ctx, model.PlanEntryInput{Date: tomorrow, TaskTitle: "Gym"})
	require.NoError(t, err)

	day, err := s.Plans.List(ctx, &today)
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, "Review notes", day[0].TaskTitle)
	assert.Equal(t, "Lab report", day[1].TaskTitle)
	assert.Equal(t, model.PriorityMedium, day[1].Priority)

	all, err := s.Plans.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Gym", all[0].TaskTitle)

	require.NoError(t, s.Plans.ToggleCompleted(ctx, afternoon, true))
	day, err = s.Plans.List(ctx, &today)
	require.NoError(t, err)
	assert.True(t, day[1].Completed)

	assert.ErrorIs(t, s.Plans.ToggleCompleted(ctx, 999, true), model.ErrNotFound)
	require.NoError(t, s.Plans.Delete(ctx, afternoon))
	assert.ErrorIs(t, s.Plans.Delete(ctx, afternoon), model.ErrNotFound)
}
