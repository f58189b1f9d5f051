package domain

import (
	"time"
)

// Session is one event's request queue, addressed by a short code.
type Session struct {
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	WelcomeMessage  *string   `json:"welcome_message,omitempty" db:"welcome_message"`
	SubtitleMessage *string   `json:"subtitle_message,omitempty" db:"subtitle_message"`
	Background      *string   `json:"background,omitempty" db:"background"`
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	IsActive        bool      `json:"is_active" db:"is_active"`
}

// Submission is a single song request within a session.
type Submission struct { //nolint:govet // field ordering mirrors the table
	ID                  int64     `json:"id" db:"id"`
	SessionID           string    `json:"session_id" db:"session_id"`
	SongName            string    `json:"song_name" db:"song_name"`
	Artist              string    `json:"artist" db:"artist"`
	UserName            *string   `json:"user_name" db:"user_name"`
	OriginalSongName    string    `json:"original_song_name" db:"original_song_name"`
	OriginalArtist      string    `json:"original_artist" db:"original_artist"`
	SpotifyID           *string   `json:"spotify_id" db:"spotify_id"`
	BPM                 *int      `json:"bpm" db:"bpm"`
	KeyCamelot          *string   `json:"key_camelot" db:"key_camelot"`
	KeyRegular          *string   `json:"key_regular" db:"key_regular"`
	EnrichmentAttempted bool      `json:"enrichment_attempted" db:"enrichment_attempted"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// SettingsUpdate carries a full replacement of a session's display settings.
// A nil field clears the stored value so the read-time default applies.
type SettingsUpdate struct {
	WelcomeMessage  *string
	SubtitleMessage *string
	Background      *string
}

// Settings are display settings with defaults already applied.
type Settings struct {
	WelcomeMessage  string `json:"welcomeMessage"`
	SubtitleMessage string `json:"subtitleMessage"`
	Background      string `json:"background"`
}

// EventType names a live update pushed to session listeners.
type EventType string

const (
	EventSubmissionCreated  EventType = "submission.created"
	EventSubmissionEnriched EventType = "submission.enriched"
	EventSubmissionsCleared EventType = "submissions.cleared"
	EventSettingsUpdated    EventType = "settings.updated"
	EventSessionClosed      EventType = "session.closed"
)

// Event is the payload broadcast to a session's live listeners.
type Event struct {
	At           time.Time   `json:"at"`
	Submission   *Submission `json:"submission,omitempty"`
	DeletedCount *int64      `json:"deletedCount,omitempty"`
	Type         EventType   `json:"type"`
	SessionID    string      `json:"sessionId"`
}
