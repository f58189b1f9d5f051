package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/cesargomez89/requestline/internal/logger"
)

// ErrDuplicate is returned when an insert collides with an existing key.
var ErrDuplicate = errors.New("duplicate key")

type DB struct {
	*sqlx.DB
	logger *logger.Logger
}

// NewSQLiteDB opens the database at path. Pragmas are set through the DSN so
// every pooled connection gets them.
func NewSQLiteDB(path string, log *logger.Logger) (*DB, error) {
	db, err := sqlx.Open("sqlite", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &DB{DB: db, logger: log.WithComponent("store")}, nil
}

// Open opens the database and applies pending migrations.
func Open(ctx context.Context, path string, log *logger.Logger) (*DB, error) {
	db, err := NewSQLiteDB(path, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func buildDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join([]string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(30000)",
		"_pragma=journal_mode(WAL)",
		"_time_format=sqlite",
	}, "&")
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// Health verifies the connection is usable.
func (db *DB) Health(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}

func constraintError(err error, extended int, message string) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	if code == extended {
		return true
	}
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), message)
}

func isDuplicate(err error) bool {
	return constraintError(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, "UNIQUE constraint failed") ||
		constraintError(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return constraintError(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY constraint failed")
}
