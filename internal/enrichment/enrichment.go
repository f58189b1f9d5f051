// Package enrichment defines the lookup contract used to correct song
// metadata and attach tempo and key information to submissions.
package enrichment

import (
	"context"
)

// Result is the outcome of one lookup. When Matched is false the name and
// artist echo the input and every optional field is nil.
type Result struct {
	SpotifyID       *string `json:"spotify_id,omitempty"`
	BPM             *int    `json:"bpm,omitempty"`
	CamelotKey      *string `json:"camelot_key,omitempty"`
	RegularKey      *string `json:"regular_key,omitempty"`
	CorrectedName   string  `json:"corrected_name"`
	CorrectedArtist string  `json:"corrected_artist"`
	Matched         bool    `json:"matched"`
}

// Fallback is the result used whenever a lookup cannot produce a match.
func Fallback(songName, artist string) Result {
	return Result{
		CorrectedName:   songName,
		CorrectedArtist: artist,
	}
}

// Provider performs lookups and never fails; any upstream problem degrades
// to Fallback.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, songName, artist string) Result
	LookupByID(ctx context.Context, trackID, songName, artist string) Result
}

// Source is an upstream lookup that reports transport and parse failures.
// A definite "no match" is returned as an unmatched Result with a nil error.
type Source interface {
	Name() string
	Search(ctx context.Context, songName, artist string) (Result, error)
	ByID(ctx context.Context, trackID, songName, artist string) (Result, error)
}

// Noop is used when enrichment is disabled.
type Noop struct{}

var _ Provider = Noop{}

func (Noop) Name() string { return "none" }

func (Noop) Lookup(_ context.Context, songName, artist string) Result {
	return Fallback(songName, artist)
}

func (Noop) LookupByID(_ context.Context, _, songName, artist string) Result {
	return Fallback(songName, artist)
}
