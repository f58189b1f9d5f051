package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cesargomez89/requestline/internal/constants"
	"github.com/cesargomez89/requestline/internal/domain"
	"github.com/cesargomez89/requestline/internal/logger"
	"github.com/cesargomez89/requestline/internal/store"
)

type SessionService struct {
	Repo    *store.DB
	Logger  *logger.Logger
	Events  Publisher
	NewCode CodeGenerator
}

func NewSessionService(repo *store.DB, events Publisher, log *logger.Logger) *SessionService {
	return &SessionService{
		Repo:    repo,
		Logger:  log.WithComponent("sessions"),
		Events:  publisherOrNop(events),
		NewCode: RandomCode,
	}
}

// CreateSession stores a new session under a freshly drawn code. Codes are
// re-drawn on collision up to MaxSessionCodeAttempts times.
func (s *SessionService) CreateSession(ctx context.Context, name string) (*domain.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: session name is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(name) > constants.MaxSessionNameLength {
		return nil, fmt.Errorf("%w: session name must be at most %d characters", domain.ErrValidation, constants.MaxSessionNameLength)
	}

	for attempt := 0; attempt < constants.MaxSessionCodeAttempts; attempt++ {
		code, err := s.NewCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session code: %w", err)
		}

		exists, err := s.Repo.SessionExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check session code: %w", err)
		}
		if exists {
			continue
		}

		session := &domain.Session{ID: code, Name: name}
		err = s.Repo.CreateSession(ctx, session)
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}

		s.Logger.Info("Session created", "session_id", session.ID, "name", name, "attempts", attempt+1)
		return session, nil
	}

	s.Logger.Error("Session code space exhausted", "attempts", constants.MaxSessionCodeAttempts)
	return nil, domain.ErrIDGenerationExhausted
}

func (s *SessionService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: sessionId", domain.ErrMissingParameter)
	}
	return s.Repo.GetSession(ctx, id)
}

// ListSessions returns active sessions, newest first.
func (s *SessionService) ListSessions(ctx context.Context) ([]domain.Session, error) {
	return s.Repo.ListSessions(ctx, true)
}

// UpdateSettings replaces the session's display settings. Omitted (nil)
// fields revert to their defaults.
func (s *SessionService) UpdateSettings(ctx context.Context, id string, u domain.SettingsUpdate) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: sessionId", domain.ErrMissingParameter)
	}
	for _, v := range []*string{u.WelcomeMessage, u.SubtitleMessage, u.Background} {
		if v != nil && utf8.RuneCountInString(*v) > constants.MaxSettingLength {
			return fmt.Errorf("%w: settings must be at most %d characters", domain.ErrValidation, constants.MaxSettingLength)
		}
	}

	if err := s.Repo.UpdateSessionSettings(ctx, id, u); err != nil {
		return err
	}

	s.Logger.Info("Session settings updated", "session_id", id)
	s.Events.Publish(newEvent(domain.EventSettingsUpdated, id))
	return nil
}

// Settings returns resolved settings for a session, or the global defaults
// when id is empty.
func (s *SessionService) Settings(ctx context.Context, id string) (domain.Settings, error) {
	if strings.TrimSpace(id) == "" {
		return GlobalSettings(), nil
	}
	session, err := s.Repo.GetSession(ctx, id)
	if err != nil {
		return domain.Settings{}, err
	}
	return ResolveSettings(session), nil
}

// DeactivateSession closes a session. Its data is kept.
func (s *SessionService) DeactivateSession(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: sessionId", domain.ErrMissingParameter)
	}
	if err := s.Repo.DeactivateSession(ctx, id); err != nil {
		return err
	}
	s.Logger.Info("Session deactivated", "session_id", id)
	s.Events.Publish(newEvent(domain.EventSessionClosed, id))
	return nil
}

// ResolveSettings applies read-time defaults to a session's stored settings.
func ResolveSettings(session *domain.Session) domain.Settings {
	settings := domain.Settings{
		WelcomeMessage:  session.Name,
		SubtitleMessage: constants.DefaultSubtitleMessage,
		Background:      constants.DefaultBackground,
	}
	if session.WelcomeMessage != nil {
		settings.WelcomeMessage = *session.WelcomeMessage
	}
	if session.SubtitleMessage != nil {
		settings.SubtitleMessage = *session.SubtitleMessage
	}
	if session.Background != nil {
		settings.Background = *session.Background
	}
	return settings
}

// GlobalSettings are served when no session is addressed.
func GlobalSettings() domain.Settings {
	return domain.Settings{
		WelcomeMessage:  constants.DefaultWelcomeMessage,
		SubtitleMessage: constants.DefaultSubtitleMessage,
		Background:      constants.DefaultBackground,
	}
}
