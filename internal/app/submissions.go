package app

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cesargomez89/requestline/internal/constants"
	"github.com/cesargomez89/requestline/internal/domain"
	"github.com/cesargomez89/requestline/internal/logger"
	"github.com/cesargomez89/requestline/internal/store"
)

// SubmitInput is a song request as received from a guest.
type SubmitInput struct {
	SessionID string
	SongName  string
	Artist    string
	UserName  string
	SpotifyID string
}

type SubmissionService struct {
	Repo     *store.DB
	Logger   *logger.Logger
	Events   Publisher
	Enricher *Enricher
}

func NewSubmissionService(repo *store.DB, enricher *Enricher, events Publisher, log *logger.Logger) *SubmissionService {
	return &SubmissionService{
		Repo:     repo,
		Enricher: enricher,
		Events:   publisherOrNop(events),
		Logger:   log.WithComponent("submissions"),
	}
}

// Submit stores a request and schedules its enrichment. The returned row
// holds the values as typed; enrichment lands later.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (*domain.Submission, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId", domain.ErrMissingParameter)
	}

	song := strings.TrimSpace(in.SongName)
	artist := strings.TrimSpace(in.Artist)
	if song == "" || artist == "" {
		return nil, fmt.Errorf("%w: song name and artist are required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(song) > constants.MaxSongFieldLength || utf8.RuneCountInString(artist) > constants.MaxSongFieldLength {
		return nil, fmt.Errorf("%w: song name and artist must be at most %d characters", domain.ErrValidation, constants.MaxSongFieldLength)
	}

	exists, err := s.Repo.SessionExists(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	sub := &domain.Submission{
		SessionID: sessionID,
		SongName:  song,
		Artist:    artist,
		UserName:  optional(in.UserName, constants.MaxUserNameLength),
		SpotifyID: optional(in.SpotifyID, 0),
	}
	if err := s.Repo.CreateSubmission(ctx, sub, nil); err != nil {
		return nil, err
	}

	s.Logger.Info("Submission received", "session_id", sessionID, "submission_id", sub.ID, "song", song, "artist", artist)

	created := newEvent(domain.EventSubmissionCreated, sessionID)
	created.Submission = sub
	s.Events.Publish(created)

	if s.Enricher != nil {
		s.Enricher.Enqueue(*sub)
	}
	return sub, nil
}

// List returns a session's requests newest first.
func (s *SubmissionService) List(ctx context.Context, sessionID string) ([]domain.Submission, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.Repo.ListSubmissions(ctx, sessionID)
}

// Clear removes every request of a session and returns how many were removed.
func (s *SubmissionService) Clear(ctx context.Context, sessionID string) (int64, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return 0, err
	}

	n, err := s.Repo.ClearSubmissions(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	s.Logger.Info("Submissions cleared", "session_id", sessionID, "deleted", n)
	cleared := newEvent(domain.EventSubmissionsCleared, sessionID)
	cleared.DeletedCount = &n
	s.Events.Publish(cleared)
	return n, nil
}

func (s *SubmissionService) requireSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: sessionId", domain.ErrMissingParameter)
	}
	exists, err := s.Repo.SessionExists(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

// optional trims v and returns nil when empty. A positive max truncates.
func optional(v string, max int) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if max > 0 && utf8.RuneCountInString(v) > max {
		v = string([]rune(v)[:max])
	}
	return &v
}
