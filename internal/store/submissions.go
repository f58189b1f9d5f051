package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cesargomez89/requestline/internal/domain"
	"github.com/cesargomez89/requestline/internal/enrichment"
)

const submissionColumns = `id, session_id, song_name, artist, user_name, original_song_name, original_artist,
	spotify_id, bpm, key_camelot, key_regular, enrichment_attempted, created_at`

// CreateSubmission stores a request. The original fields are set from the
// current ones. When res is non-nil its corrections are applied before the
// write and the row is marked as enriched. A missing session yields
// domain.ErrNotFound.
func (db *DB) CreateSubmission(ctx context.Context, sub *domain.Submission, res *enrichment.Result) error {
	sub.OriginalSongName = sub.SongName
	sub.OriginalArtist = sub.Artist
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	if res != nil {
		applyResult(sub, *res)
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO submissions (
			session_id, song_name, artist, user_name, original_song_name, original_artist,
			spotify_id, bpm, key_camelot, key_regular, enrichment_attempted, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sub.SessionID, sub.SongName, sub.Artist, sub.UserName, sub.OriginalSongName, sub.OriginalArtist,
		sub.SpotifyID, sub.BPM, sub.KeyCamelot, sub.KeyRegular, sub.EnrichmentAttempted, sub.CreatedAt)
	if isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	sub.ID = id
	return nil
}

func applyResult(sub *domain.Submission, res enrichment.Result) {
	if res.CorrectedName != "" {
		sub.SongName = res.CorrectedName
	}
	if res.CorrectedArtist != "" {
		sub.Artist = res.CorrectedArtist
	}
	if res.SpotifyID != nil {
		sub.SpotifyID = res.SpotifyID
	}
	sub.BPM = res.BPM
	sub.KeyCamelot = res.CamelotKey
	sub.KeyRegular = res.RegularKey
	sub.EnrichmentAttempted = true
}

// ListSubmissions returns a session's requests newest first.
func (db *DB) ListSubmissions(ctx context.Context, sessionID string) ([]domain.Submission, error) {
	subs := []domain.Submission{}
	err := db.SelectContext(ctx, &subs, "SELECT "+submissionColumns+`
		FROM submissions WHERE session_id = ?
		ORDER BY created_at DESC, id DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// GetSubmission returns one request scoped to its session.
func (db *DB) GetSubmission(ctx context.Context, sessionID string, id int64) (*domain.Submission, error) {
	var sub domain.Submission
	err := db.GetContext(ctx, &sub, "SELECT "+submissionColumns+" FROM submissions WHERE session_id = ? AND id = ?", sessionID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ClearSubmissions deletes every request of a session and returns the count.
func (db *DB) ClearSubmissions(ctx context.Context, sessionID string) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM submissions WHERE session_id = ?", sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ApplyEnrichment updates a request in place once. It reports false when the
// row is gone or was already enriched.
func (db *DB) ApplyEnrichment(ctx context.Context, id int64, res enrichment.Result) (bool, error) {
	var sub domain.Submission
	applyResult(&sub, res)

	result, err := db.ExecContext(ctx, `
		UPDATE submissions SET
			song_name = COALESCE(NULLIF(?, ''), song_name),
			artist = COALESCE(NULLIF(?, ''), artist),
			spotify_id = COALESCE(?, spotify_id),
			bpm = ?,
			key_camelot = ?,
			key_regular = ?,
			enrichment_attempted = 1
		WHERE id = ? AND enrichment_attempted = 0
	`, res.CorrectedName, res.CorrectedArtist, sub.SpotifyID, sub.BPM, sub.KeyCamelot, sub.KeyRegular, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
