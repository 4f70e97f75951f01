package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"study-buddy/internal/model"
)

// DefaultPath is the database file used when none is configured.
const DefaultPath = "enhanced_study_helper.db"

// Store owns the SQLite file, its schema and one repository per record kind.
type Store struct {
	db   *gorm.DB
	path string
	log  *zap.Logger
	now  func() time.Time

	Tasks    *TaskRepository
	Scores   *ScoreRepository
	Sessions *SessionRepository
	Goals    *GoalRepository
	Plans    *PlanRepository
}

// Option customises Open.
type Option func(*Store)

// WithLogger routes store and gorm logging through l.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces the wall clock used for created_at and completed_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens (or creates) the SQLite database at path and ensures the schema exists.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	s := &Store{path: path, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("store")

	if err := ensureDirForSQLite(path); err != nil {
		return nil, &model.StorageInitError{Path: path, Err: err}
	}

	dbLogger := logger.New(
		zap.NewStdLog(s.log),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:  dbLogger,
		NowFunc: func() time.Time { return s.now().UTC() },
	})
	if err != nil {
		return nil, &model.StorageInitError{Path: path, Err: fmt.Errorf("open db: %w", err)}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, &model.StorageInitError{Path: path, Err: err}
	}
	// One connection serialises every statement against the file.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, &model.StorageInitError{Path: path, Err: fmt.Errorf("ping db: %w", err)}
	}

	s.db = db
	if err := s.Initialize(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, &model.StorageInitError{Path: path, Err: err}
	}

	s.Tasks = &TaskRepository{db: db, now: s.clock}
	s.Scores = &ScoreRepository{db: db, now: s.clock}
	s.Sessions = &SessionRepository{db: db, now: s.clock}
	s.Goals = &GoalRepository{db: db, now: s.clock}
	s.Plans = &PlanRepository{db: db, now: s.clock}

	s.log.Info("store opened", zap.String("path", path))
	return s, nil
}

// Initialize creates any missing tables. It never touches existing rows.
func (s *Store) Initialize(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&model.Task{},
		&model.TestScore{},
		&model.StudySession{},
		&model.Goal{},
		&model.PlanEntry{},
	)
	if err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) clock() time.Time {
	return s.now().UTC()
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	if info, err := os.Stat(clean); err == nil && info.IsDir() {
		return fmt.Errorf("%q is a directory", clean)
	}
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

func ioErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &model.StorageIOError{Op: op, Err: err}
}

func notFound(kind string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.NotFoundError{Kind: kind, ID: id}
	}
	return ioErr("get "+kind, err)
}
