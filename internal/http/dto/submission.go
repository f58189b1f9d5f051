package dto

import (
	"github.com/cesargomez89/requestline/internal/constants"
	"github.com/cesargomez89/requestline/internal/domain"
)

type SubmitRequest struct {
	SongName  string `json:"songName"`
	Artist    string `json:"artist"`
	UserName  string `json:"userName"`
	SessionID string `json:"sessionId"`
	SpotifyID string `json:"spotifyId"`
}

func (r *SubmitRequest) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateRequired("sessionId", r.SessionID)...)
	errs = append(errs, validateRequired("songName", r.SongName)...)
	errs = append(errs, validateRequired("artist", r.Artist)...)
	errs = append(errs, validateMaxLength("songName", r.SongName, constants.MaxSongFieldLength)...)
	errs = append(errs, validateMaxLength("artist", r.Artist, constants.MaxSongFieldLength)...)
	errs = append(errs, validateMaxLength("userName", r.UserName, constants.MaxUserNameLength)...)
	return errs
}

type SubmitResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

type ClearRequest struct {
	SessionID string `json:"sessionId"`
}

type ClearResponse struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deletedCount"`
}

// Submission is a submission row as listed to admins.
type Submission struct {
	ID                  int64   `json:"id"`
	SessionID           string  `json:"session_id"`
	SongName            string  `json:"song_name"`
	Artist              string  `json:"artist"`
	UserName            *string `json:"user_name"`
	OriginalSongName    string  `json:"original_song_name"`
	OriginalArtist      string  `json:"original_artist"`
	SpotifyID           *string `json:"spotify_id"`
	BPM                 *int    `json:"bpm"`
	KeyCamelot          *string `json:"key_camelot"`
	KeyRegular          *string `json:"key_regular"`
	EnrichmentAttempted bool    `json:"enrichment_attempted"`
	CreatedAt           string  `json:"created_at"`
}

func NewSubmission(s domain.Submission) Submission {
	return Submission{
		ID:                  s.ID,
		SessionID:           s.SessionID,
		SongName:            s.SongName,
		Artist:              s.Artist,
		UserName:            s.UserName,
		OriginalSongName:    s.OriginalSongName,
		OriginalArtist:      s.OriginalArtist,
		SpotifyID:           s.SpotifyID,
		BPM:                 s.BPM,
		KeyCamelot:          s.KeyCamelot,
		KeyRegular:          s.KeyRegular,
		EnrichmentAttempted: s.EnrichmentAttempted,
		CreatedAt:           FormatTimestamp(s.CreatedAt),
	}
}

func NewSubmissions(subs []domain.Submission) []Submission {
	out := make([]Submission, 0, len(subs))
	for _, s := range subs {
		out = append(out, NewSubmission(s))
	}
	return out
}
