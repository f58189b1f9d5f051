package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/cesargomez89/requestline/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func (db *DB) withGoose(fn func(*sql.DB) error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{db.logger})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return fn(db.DB.DB)
}

// Migrate applies all pending migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return db.withGoose(func(conn *sql.DB) error {
		if err := gooseUpContext(ctx, conn, migrationsDir); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		return nil
	})
}

// MigrateDown rolls back the most recent migration.
func (db *DB) MigrateDown(ctx context.Context) error {
	return db.withGoose(func(conn *sql.DB) error {
		if err := goose.DownContext(ctx, conn, migrationsDir); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		return nil
	})
}

// MigrationStatus logs the state of every migration.
func (db *DB) MigrationStatus(ctx context.Context) error {
	return db.withGoose(func(conn *sql.DB) error {
		return goose.StatusContext(ctx, conn, migrationsDir)
	})
}

// SchemaVersion returns the current migration version.
func (db *DB) SchemaVersion(ctx context.Context) (int64, error) {
	var version int64
	err := db.withGoose(func(conn *sql.DB) error {
		v, err := goose.GetDBVersionContext(ctx, conn)
		version = v
		return err
	})
	return version, err
}

type gooseLogger struct {
	l *logger.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.l.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	g.l.Error(msg)
	panic(msg)
}
