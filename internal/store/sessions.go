package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cesargomez89/requestline/internal/domain"
)

const sessionColumns = `id, name, created_at, is_active, welcome_message, subtitle_message, background`

// SessionExists reports whether a session with the id is stored.
func (db *DB) SessionExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := db.GetContext(ctx, &n, "SELECT COUNT(1) FROM sessions WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateSession inserts a new active session with no display overrides.
// A colliding id yields ErrDuplicate.
func (db *DB) CreateSession(ctx context.Context, s *domain.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.IsActive = true

	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (id, name, created_at, is_active, welcome_message, subtitle_message, background)
		VALUES (?, ?, ?, 1, ?, ?, ?)
	`, s.ID, s.Name, s.CreatedAt, s.WelcomeMessage, s.SubtitleMessage, s.Background)
	if isDuplicate(err) {
		return fmt.Errorf("session %s: %w", s.ID, ErrDuplicate)
	}
	return err
}

// GetSession returns the session or domain.ErrNotFound.
func (db *DB) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	err := db.GetContext(ctx, &s, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions returns sessions newest first.
func (db *DB) ListSessions(ctx context.Context, activeOnly bool) ([]domain.Session, error) {
	query := "SELECT " + sessionColumns + " FROM sessions"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	sessions := []domain.Session{}
	if err := db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateSessionSettings replaces all three display settings; nil fields are
// stored as NULL.
func (db *DB) UpdateSessionSettings(ctx context.Context, id string, u domain.SettingsUpdate) error {
	res, err := db.ExecContext(ctx, `
		UPDATE sessions SET welcome_message = ?, subtitle_message = ?, background = ?
		WHERE id = ?
	`, u.WelcomeMessage, u.SubtitleMessage, u.Background, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeactivateSession marks a session closed. Rows are never deleted.
func (db *DB) DeactivateSession(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, "UPDATE sessions SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
