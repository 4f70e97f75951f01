package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"study-buddy/internal/model"
)

// DefaultSettingsPath is the settings document used when none is configured.
const DefaultSettingsPath = "app_config.json"

// Settings keys with built-in defaults.
const (
	KeyTheme               = "theme"
	KeyNotifications       = "notifications"
	KeyAutoBackup          = "auto_backup"
	KeyDefaultReminderTime = "default_reminder_time"
	KeyStudySessionGoals   = "study_session_goals"
	KeyGradeScale          = "grade_scale"
)

// DefaultSettings returns a fresh copy of the built-in settings document.
func DefaultSettings() map[string]any {
	return map[string]any{
		KeyTheme:               "dark_academic",
		KeyNotifications:       true,
		KeyAutoBackup:          true,
		KeyDefaultReminderTime: 30,
		KeyStudySessionGoals: map[string]any{
			"daily_minutes":   120,
			"weekly_sessions": 5,
		},
		KeyGradeScale: map[string]any{
			"A+": 97, "A": 93, "A-": 90,
			"B+": 87, "B": 83, "B-": 80,
			"C+": 77, "C": 73, "C-": 70,
			"D+": 67, "D": 63, "D-": 60,
			"F": 0,
		},
	}
}

// Settings is a JSON key-value document merged over DefaultSettings.
// Every Set rewrites the whole file.
type Settings struct {
	path string
	log  *zap.Logger

	mu   sync.RWMutex
	data map[string]any

	// saveMu orders writes so the file always holds the latest document.
	saveMu sync.Mutex
}

// OpenSettings loads the document at path. It never fails: problems with the
// file are logged and the defaults are used instead.
func OpenSettings(path string, logger *zap.Logger) *Settings {
	if path == "" {
		path = DefaultSettingsPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Settings{path: path, log: logger.Named("settings")}
	s.Load()
	return s
}

// Load rereads the file and returns a copy of the merged document. Keys in
// the file that have no default are kept.
func (s *Settings) Load() map[string]any {
	data := s.read()

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return s.Snapshot()
}

func (s *Settings) read() map[string]any {
	defaults := DefaultSettings()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("settings file missing, using defaults", zap.String("path", s.path))
		} else {
			s.log.Warn("read settings, using defaults", zap.String("path", s.path), zap.Error(err))
		}
		return defaults
	}

	var loaded map[string]any
	if err := json.Unmarshal(raw, &loaded); err != nil || loaded == nil {
		if err == nil {
			err = fmt.Errorf("document is not an object")
		}
		s.log.Warn("parse settings, using defaults", zap.String("path", s.path), zap.Error(err))
		return defaults
	}

	for key, value := range defaults {
		if _, ok := loaded[key]; !ok {
			loaded[key] = value
		}
	}
	return loaded
}

// Path returns the settings file location.
func (s *Settings) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *Settings) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// GetOr returns the value under key or fallback when it is absent.
func (s *Settings) GetOr(key string, fallback any) any {
	if v, ok := s.Get(key); ok {
		return v
	}
	return fallback
}

// Set stores value under key and writes the document. When the write fails
// the new value stays in memory and a *model.ConfigWriteError is returned.
func (s *Settings) Set(key string, value any) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	s.data[key] = value
	raw, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return &model.ConfigWriteError{Path: s.path, Err: fmt.Errorf("marshal settings: %w", err)}
	}

	if err := writeFileAtomic(s.path, raw); err != nil {
		return &model.ConfigWriteError{Path: s.path, Err: err}
	}
	s.log.Debug("settings saved", zap.String("key", key))
	return nil
}

// writeFileAtomic writes into a temp file next to path and renames it over
// path, so readers never see a half written document.
func writeFileAtomic(path string, raw []byte) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Snapshot returns a deep copy of the current document.
func (s *Settings) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMap(s.data)
}

// Bool reads a boolean setting.
func (s *Settings) Bool(key string, fallback bool) bool {
	if b, ok := s.GetOr(key, fallback).(bool); ok {
		return b
	}
	return fallback
}

// Int reads a numeric setting, truncating fractions.
func (s *Settings) Int(key string, fallback int) int {
	if n, ok := toFloat(s.GetOr(key, fallback)); ok {
		return int(n)
	}
	return fallback
}

// StudyGoals returns the advisory daily minutes and weekly session targets.
func (s *Settings) StudyGoals() (dailyMinutes, weeklySessions int) {
	dailyMinutes, weeklySessions = 120, 5
	goals, ok := s.GetOr(KeyStudySessionGoals, nil).(map[string]any)
	if !ok {
		return dailyMinutes, weeklySessions
	}
	if n, ok := toFloat(goals["daily_minutes"]); ok {
		dailyMinutes = int(n)
	}
	if n, ok := toFloat(goals["weekly_sessions"]); ok {
		weeklySessions = int(n)
	}
	return dailyMinutes, weeklySessions
}

// GradeScale returns the letter grade thresholds. Entries that are not numbers are skipped.
func (s *Settings) GradeScale() model.GradeScale {
	raw, ok := s.GetOr(KeyGradeScale, nil).(map[string]any)
	if !ok {
		return nil
	}
	thresholds := make(map[string]float64, len(raw))
	for letter, v := range raw {
		if n, ok := toFloat(v); ok {
			thresholds[letter] = n
		}
	}
	return model.NewGradeScale(thresholds)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func copyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if nested, ok := v.(map[string]any); ok {
			dst[k] = copyMap(nested)
			continue
		}
		dst[k] = v
	}
	return dst
}
