// Package sqlite is the relational mirror of elections, positions, candidates
// and votes.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type (
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// connection options: WAL journal, wait on locks instead of failing, enforce foreign keys
const connOpts = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// Repository stores the mirror in SQLite through gorm.
type Repository struct {
	db      *gorm.DB
	metrics Metrics
}

// Open opens or creates the database at path and migrates the schema. An empty
// path opens a private in-memory database.
func Open(path string, metrics Metrics) (*Repository, error) {
	dsn := "file::memory:?_pragma=foreign_keys(1)"
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?%s", path, connOpts)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// One connection serializes writers and keeps an in-memory database alive.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.Election{}, &model.Position{}, &model.Candidate{}, &model.Vote{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &Repository{db: db, metrics: metrics}, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", model.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", model.ErrDuplicate, err)
	default:
		return err
	}
}
