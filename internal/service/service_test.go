package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"study-buddy/internal/config"
	"study-buddy/internal/model"
	"study-buddy/internal/repository"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)}
}

func openStore(t *testing.T, clock *testClock) *repository.Store {
	t.Helper()
	store, err := repository.Open(filepath.Join(t.TempDir(), "study.db"), repository.WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func openSettings(t *testing.T) *config.Settings {
	t.Helper()
	return config.OpenSettings(filepath.Join(t.TempDir(), "app_config.json"), zap.NewNop())
}

// completeTaskAt adds a task and marks it done with the clock set to at.
func completeTaskAt(t *testing.T, store *repository.Store, clock *testClock, at time.Time) {
	t.Helper()
	saved := clock.now
	defer func() { clock.now = saved }()

	clock.now = at
	id, err := store.Tasks.Add(context.Background(), model.TaskInput{Title: "done at " + at.Format(time.RFC3339)})
	require.NoError(t, err)
	require.NoError(t, store.Tasks.ToggleDone(context.Background(), id, true))
}
