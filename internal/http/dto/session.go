package dto

import (
	"time"

	"github.com/cesargomez89/requestline/internal/constants"
	"github.com/cesargomez89/requestline/internal/domain"
)

// TimestampFormat is the UTC layout every timestamp is rendered with.
const TimestampFormat = "2006-01-02T15:04:05Z"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

type CreateSessionRequest struct {
	Name string `json:"name"`
}

func (r *CreateSessionRequest) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateRequired("name", r.Name)...)
	errs = append(errs, validateMaxLength("name", r.Name, constants.MaxSessionNameLength)...)
	return errs
}

type Session struct {
	Settings  *domain.Settings `json:"settings,omitempty"`
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	CreatedAt string           `json:"createdAt"`
	IsActive  bool             `json:"isActive"`
}

// NewSession renders s. Settings are included when non-nil.
func NewSession(s *domain.Session, settings *domain.Settings) Session {
	return Session{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: FormatTimestamp(s.CreatedAt),
		IsActive:  s.IsActive,
		Settings:  settings,
	}
}

type SessionResponse struct {
	Session Session `json:"session"`
	Success bool    `json:"success"`
}

type SessionsResponse struct {
	Sessions []Session `json:"sessions"`
	Success  bool      `json:"success"`
}
