package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the app.
type Config struct {
	DatabasePath  string `mapstructure:"STUDYBUDDY_DB_PATH"`
	SettingsPath  string `mapstructure:"STUDYBUDDY_SETTINGS_PATH"`
	BackupDir     string `mapstructure:"STUDYBUDDY_BACKUP_DIR"`
	BackupKeep    int    `mapstructure:"STUDYBUDDY_BACKUP_KEEP"`
	BackupTime    string `mapstructure:"STUDYBUDDY_BACKUP_TIME"`
	ReportTime    string `mapstructure:"STUDYBUDDY_REPORT_TIME"`
	LogFile       string `mapstructure:"STUDYBUDDY_LOG_FILE"`
	LogLevel      string `mapstructure:"STUDYBUDDY_LOG_LEVEL"`
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	OwnerID       int64  `mapstructure:"TELEGRAM_OWNER_ID"`
}

var defaults = map[string]any{
	"STUDYBUDDY_DB_PATH":       "enhanced_study_helper.db",
	"STUDYBUDDY_SETTINGS_PATH": "app_config.json",
	"STUDYBUDDY_BACKUP_DIR":    "backups",
	"STUDYBUDDY_BACKUP_KEEP":   10,
	"STUDYBUDDY_BACKUP_TIME":   "03:00",
	"STUDYBUDDY_REPORT_TIME":   "20:00",
	"STUDYBUDDY_LOG_FILE":      "logs/studybuddy.log",
	"STUDYBUDDY_LOG_LEVEL":     "info",
	"TELEGRAM_TOKEN":           "",
	"TELEGRAM_OWNER_ID":        0,
}

// Load reads configuration from the environment and an optional .env file in dir.
func Load(dir string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)

	if cfg.BackupKeep < 1 {
		cfg.BackupKeep = 1
	}
	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if cfg.OwnerID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_OWNER_ID is required")
	}
	return cfg, nil
}
