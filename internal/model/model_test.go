package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{in: "low", want: PriorityLow},
		{in: "HIGH", want: PriorityHigh},
		{in: " Urgent ", want: PriorityUrgent},
		{in: "2", want: PriorityMedium},
		{in: "", want: PriorityMedium},
		{in: "critical", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
	assert.Equal(t, "Urgent", PriorityUrgent.String())
	assert.False(t, Priority(9).Valid())
}

func TestParseTaskFilterMatchesString(t *testing.T) {
	for _, f := range []TaskFilter{FilterAll, FilterPending, FilterCompleted, FilterHighPriority, FilterUrgent} {
		got, err := ParseTaskFilter(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseTaskFilter("someday")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", d.String())
	assert.Equal(t, "2026-03-01", d.AddDays(1).String())

	_, err = ParseDate("28/02/2026")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "date", vErr.Field)

	late := time.Date(2026, 3, 15, 23, 30, 0, 0, time.FixedZone("UTC+5", 5*3600))
	assert.Equal(t, "2026-03-15", NewDate(late).String())

	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
	v, err = d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", v)
	assert.Equal(t, "", Date{}.String())
}

func TestDateScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want string
	}{
		{name: "nil", src: nil, want: ""},
		{name: "text", src: "2026-01-05", want: "2026-01-05"},
		{name: "bytes", src: []byte("2026-01-06"), want: "2026-01-06"},
		{name: "timestamp text", src: "2026-01-07 10:11:12", want: "2026-01-07"},
		{name: "time", src: time.Date(2026, 1, 8, 9, 0, 0, 0, time.UTC), want: "2026-01-08"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.want, d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("garbage!!"))
}

func TestGradeScale(t *testing.T) {
	scale := NewGradeScale(map[string]float64{"A": 90, "B": 80, "C": 70, "F": 0})
	assert.Equal(t, "A", scale.Grade(95))
	assert.Equal(t, "A", scale.Grade(90))
	assert.Equal(t, "B", scale.Grade(89.9))
	assert.Equal(t, "F", scale.Grade(12))
	assert.Equal(t, "", GradeScale(nil).Grade(50))

	strict := NewGradeScale(map[string]float64{"Pass": 50})
	assert.Equal(t, "", strict.Grade(49))
}

func TestTestScorePercent(t *testing.T) {
	assert.InDelta(t, 75.0, TestScore{Score: 15, MaxScore: 20}.Percent(), 1e-9)
	assert.Zero(t, TestScore{Score: 15}.Percent())
}

func TestValidate(t *testing.T) {
	err := Validate(TaskInput{Title: "  "})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "title", vErr.Field)
	assert.Equal(t, "must not be empty", vErr.Reason)
	assert.Equal(t, "invalid title: must not be empty", err.Error())

	err = Validate(TestScoreInput{Subject: "Math", TestName: "Quiz", Score: 12, MaxScore: 10, Date: DateOf(2026, 1, 1)})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "score", vErr.Field)
	assert.Equal(t, "must not exceed max_score", vErr.Reason)

	assert.NoError(t, Validate(TaskInput{Title: "ok"}))
}

func TestErrorTaxonomy(t *testing.T) {
	cause := errors.New("disk full")

	ioErr := error(&StorageIOError{Op: "create task", Err: cause})
	assert.ErrorIs(t, ioErr, ErrStorageIO)
	assert.ErrorIs(t, ioErr, cause)
	assert.NotErrorIs(t, ioErr, ErrValidation)

	initErr := error(&StorageInitError{Path: "x.db", Err: cause})
	assert.ErrorIs(t, initErr, ErrStorageInit)
	assert.ErrorIs(t, initErr, cause)

	cfgErr := error(&ConfigWriteError{Path: "app_config.json", Err: cause})
	assert.ErrorIs(t, cfgErr, ErrConfigWrite)

	nf := error(&NotFoundError{Kind: "task", ID: 3})
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.Equal(t, "task 3 not found", nf.Error())
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "duration_minutes", toSnake("DurationMinutes"))
	assert.Equal(t, "title", toSnake("Title"))
}
