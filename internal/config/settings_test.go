package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"study-buddy/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSettingsMissingFileUsesDefaults(t *testing.T) {
	s := OpenSettings(filepath.Join(t.TempDir(), "app_config.json"), zap.NewNop())

	assert.Equal(t, DefaultSettings(), s.Snapshot())
	assert.Equal(t, "dark_academic", s.GetOr(KeyTheme, ""))
	assert.True(t, s.Bool(KeyNotifications, false))
	assert.Equal(t, 30, s.Int(KeyDefaultReminderTime, 0))

	daily, weekly := s.StudyGoals()
	assert.Equal(t, 120, daily)
	assert.Equal(t, 5, weekly)
}

func TestSettingsMergesDefaultsIntoPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_config.json")
	writeFile(t, path, `{"theme":"light","custom_flag":"on"}`)

	s := OpenSettings(path, nil)
	doc := s.Snapshot()

	assert.Equal(t, "light", doc[KeyTheme])
	assert.Equal(t, "on", doc["custom_flag"])
	for key := range DefaultSettings() {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, true, doc[KeyNotifications])
	assert.Equal(t, true, doc[KeyAutoBackup])
}

func TestSettingsMalformedFileFallsBack(t *testing.T) {
	for name, content := range map[string]string{
		"broken json": `{"theme": `,
		"not object":  `[1, 2, 3]`,
		"null":        `null`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "app_config.json")
			writeFile(t, path, content)

			s := OpenSettings(path, zap.NewNop())
			assert.Equal(t, DefaultSettings(), s.Snapshot())
		})
	}
}

func TestSettingsSetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "app_config.json")
	s := OpenSettings(path, zap.NewNop())

	require.NoError(t, s.Set(KeyTheme, "solarized"))
	require.NoError(t, s.Set(KeyStudySessionGoals, map[string]any{"daily_minutes": 45, "weekly_sessions": 3}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]any
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Equal(t, "solarized", onDisk[KeyTheme])
	assert.Contains(t, onDisk, KeyGradeScale)

	reopened := OpenSettings(path, zap.NewNop())
	assert.Equal(t, "solarized", reopened.GetOr(KeyTheme, ""))
	daily, weekly := reopened.StudyGoals()
	assert.Equal(t, 45, daily)
	assert.Equal(t, 3, weekly)
}

func TestSettingsSetWriteFailureKeepsValue(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	writeFile(t, blocker, "i am a file")
	s := OpenSettings(filepath.Join(blocker, "app_config.json"), zap.NewNop())

	err := s.Set(KeyTheme, "light")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfigWrite)

	var cwErr *model.ConfigWriteError
	require.ErrorAs(t, err, &cwErr)
	assert.Equal(t, filepath.Join(blocker, "app_config.json"), cwErr.Path)

	v, ok := s.Get(KeyTheme)
	require.True(t, ok)
	assert.Equal(t, "light", v)
}

func TestSettingsLoadRereadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_config.json")
	s := OpenSettings(path, zap.NewNop())
	require.NoError(t, s.Set(KeyNotifications, false))

	writeFile(t, path, `{"notifications": true, "theme": "paper"}`)
	doc := s.Load()
	assert.Equal(t, "paper", doc[KeyTheme])
	assert.True(t, s.Bool(KeyNotifications, false))
}

func TestSettingsSnapshotIsDetached(t *testing.T) {
	s := OpenSettings(filepath.Join(t.TempDir(), "app_config.json"), zap.NewNop())

	doc := s.Snapshot()
	doc[KeyTheme] = "changed"
	doc[KeyStudySessionGoals].(map[string]any)["daily_minutes"] = 1

	assert.Equal(t, "dark_academic", s.GetOr(KeyTheme, ""))
	daily, _ := s.StudyGoals()
	assert.Equal(t, 120, daily)
}

func TestSettingsGradeScale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_config.json")
	s := OpenSettings(path, zap.NewNop())

	scale := s.GradeScale()
	assert.Equal(t, "A+", scale.Grade(98))
	assert.Equal(t, "A-", scale.Grade(91))
	assert.Equal(t, "F", scale.Grade(12))

	writeFile(t, path, `{"grade_scale": {"Pass": 50, "Fail": 0, "Bogus": "x"}}`)
	s.Load()
	scale = s.GradeScale()
	assert.Len(t, scale, 2)
	assert.Equal(t, "Pass", scale.Grade(50))
	assert.Equal(t, "Fail", scale.Grade(49.5))

	require.NoError(t, s.Set(KeyGradeScale, "nonsense"))
	assert.Nil(t, s.GradeScale())
}

func TestSettingsConcurrentSetKeepsEveryKeyOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app_config.json")
	s := OpenSettings(path, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Set(fmt.Sprintf("key_%02d", i), i))
		}(i)
	}
	wg.Wait()

	reopened := OpenSettings(path, zap.NewNop())
	for i := 0; i < 20; i++ {
		v, ok := reopened.Get(fmt.Sprintf("key_%02d", i))
		require.True(t, ok, "key_%02d missing on disk", i)
		assert.Equal(t, float64(i), v)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "app_config.json", entries[0].Name())
}
