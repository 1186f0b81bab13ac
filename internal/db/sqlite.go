package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	// ErrStorageUnavailable means the local engine could not be opened; the
	// data layer is not functional.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStorage marks a failed read or write against an open engine.
	ErrStorage = errors.New("storage operation failed")
)

func OpenSQLite(dbPath string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %w", ErrStorageUnavailable, err)
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", ErrStorageUnavailable, err)
	}

	// One connection: the store has a single writer and sqlite serializes
	// writes anyway.
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: sql handle: %w", ErrStorageUnavailable, err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := upgradeSchema(database); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: apply embedded migrations: %w", ErrStorageUnavailable, err)
	}

	return database, nil
}

func storageError(collection string, operation string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrStorage, collection, operation, err)
}

func pingDatabase(ctx context.Context, database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}
