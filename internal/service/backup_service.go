package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"study-buddy/internal/config"
	"study-buddy/internal/repository"
)

// BackupService copies the database into a backup directory and keeps only
// the newest copies.
type BackupService struct {
	store    *repository.Store
	settings *config.Settings
	dir      string
	keep     int
	log      *zap.Logger
}

func NewBackupService(store *repository.Store, settings *config.Settings, dir string, keep int, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if keep < 1 {
		keep = 1
	}
	return &BackupService{store: store, settings: settings, dir: dir, keep: keep, log: logger.Named("backup")}
}

// Run writes a backup and prunes old ones. It returns the new file path.
func (s *BackupService) Run(ctx context.Context) (string, error) {
	path, err := s.store.Backup(ctx, s.dir)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	if err := s.prune(); err != nil {
		s.log.Warn("prune backups", zap.Error(err))
	}
	return path, nil
}

// RunIfEnabled runs a backup only when the auto_backup setting is on.
func (s *BackupService) RunIfEnabled(ctx context.Context) (string, bool, error) {
	if s.settings != nil && !s.settings.Bool(config.KeyAutoBackup, true) {
		s.log.Debug("auto backup disabled")
		return "", false, nil
	}
	path, err := s.Run(ctx)
	return path, true, err
}

// prune relies on the timestamped names sorting chronologically.
func (s *BackupService) prune() error {
	files, err := filepath.Glob(filepath.Join(s.dir, repository.BackupPattern))
	if err != nil {
		return err
	}
	if len(files) <= s.keep {
		return nil
	}
	sort.Strings(files)
	for _, f := range files[:len(files)-s.keep] {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("remove %s: %w", f, err)
		}
		s.log.Info("old backup removed", zap.String("file", f))
	}
	return nil
}
