package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// BackupPattern matches the files written by Backup.
const BackupPattern = "backup_*.db"

// Backup writes a consistent copy of the database into dir as
// backup_YYYYMMDD_HHMMSS.db and returns its path. A second backup within the
// same second gets a _1, _2, ... suffix.
func (s *Store) Backup(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", ioErr("create backup dir", err)
	}
	target, err := freeBackupPath(dir, s.now().Format("20060102_150405"))
	if err != nil {
		return "", ioErr("backup", err)
	}

	if err := s.db.WithContext(ctx).Exec("VACUUM INTO ?", target).Error; err != nil {
		return "", ioErr("backup", err)
	}
	s.log.Info("backup written", zap.String("file", target))
	return target, nil
}

// maxBackupSuffix bounds the search for a free name within one second.
const maxBackupSuffix = 1000

// freeBackupPath returns the first unused backup name for stamp. Suffixed
// names sort after the plain one, keeping name order chronological.
func freeBackupPath(dir, stamp string) (string, error) {
	for i := 0; i < maxBackupSuffix; i++ {
		name := fmt.Sprintf("backup_%s.db", stamp)
		if i > 0 {
			name = fmt.Sprintf("backup_%s_%d.db", stamp, i)
		}
		target := filepath.Join(dir, name)
		if _, err := os.Stat(target); os.IsNotExist(err) {
			return target, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free backup name for %s in %s", stamp, dir)
}
