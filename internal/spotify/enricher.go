package spotify

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/cesargomez89/requestline/internal/camelot"
	"github.com/cesargomez89/requestline/internal/constants"
	"github.com/cesargomez89/requestline/internal/enrichment"
	"github.com/cesargomez89/requestline/internal/logger"
)

// Enricher resolves submissions against the Spotify catalog.
type Enricher struct {
	client *Client
	logger *logger.Logger
}

var _ enrichment.Source = (*Enricher)(nil)

func NewEnricher(client *Client, log *logger.Logger) *Enricher {
	return &Enricher{
		client: client,
		logger: log.WithComponent("spotify"),
	}
}

func (e *Enricher) Name() string {
	return constants.ProviderSpotify
}

// Search finds the best match for the song and artist. An empty result set
// is a definite miss.
func (e *Enricher) Search(ctx context.Context, songName, artist string) (enrichment.Result, error) {
	tracks, err := e.client.SearchTracks(ctx, searchQuery(songName, artist), 1)
	if err != nil {
		return enrichment.Result{}, err
	}
	if len(tracks) == 0 {
		return enrichment.Fallback(songName, artist), nil
	}
	return e.withFeatures(ctx, tracks[0]), nil
}

// ByID skips the search step and reads the track directly.
func (e *Enricher) ByID(ctx context.Context, trackID, songName, artist string) (enrichment.Result, error) {
	track, err := e.client.GetTrack(ctx, trackID)
	if errors.Is(err, ErrNotFound) {
		return e.Search(ctx, songName, artist)
	}
	if err != nil {
		return enrichment.Result{}, err
	}
	return e.withFeatures(ctx, *track), nil
}

// withFeatures builds a matched result; a features failure leaves BPM and
// key nil but keeps the corrected name and artist.
func (e *Enricher) withFeatures(ctx context.Context, track Track) enrichment.Result {
	id := track.ID
	res := enrichment.Result{
		CorrectedName:   track.Name,
		CorrectedArtist: track.ArtistNames(),
		SpotifyID:       &id,
		Matched:         true,
	}

	features, err := e.client.AudioFeatures(ctx, track.ID)
	if err != nil {
		e.logger.Warn("Audio features unavailable", "track_id", track.ID, "error", err)
		return res
	}
	applyFeatures(&res, features)
	return res
}

func applyFeatures(res *enrichment.Result, f *AudioFeatures) {
	if f == nil {
		return
	}
	if f.Tempo > 0 {
		bpm := int(math.Round(f.Tempo))
		res.BPM = &bpm
	}
	res.CamelotKey = camelot.ToCamelot(f.Key, f.Mode)
	res.RegularKey = camelot.ToRegularKey(f.Key, f.Mode)
}

func searchQuery(songName, artist string) string {
	q := "track:" + strings.TrimSpace(songName)
	if a := strings.TrimSpace(artist); a != "" {
		q += " artist:" + a
	}
	return q
}

// Suggest returns up to one page of typeahead matches for q, with tempo and
// key filled in from a single batched features request.
func (e *Enricher) Suggest(ctx context.Context, q string) ([]Suggestion, error) {
	q = strings.TrimSpace(q)
	if q == "" || !e.client.Enabled() {
		return []Suggestion{}, nil
	}

	tracks, err := e.client.SearchTracks(ctx, q, constants.SuggestionPageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
	}

	features, err := e.client.SeveralAudioFeatures(ctx, ids)
	if err != nil {
		e.logger.Warn("Batch audio features unavailable", "error", err)
		features = map[string]*AudioFeatures{}
	}

	out := make([]Suggestion, 0, len(tracks))
	for _, t := range tracks {
		s := Suggestion{
			SongName:  t.Name,
			Artist:    t.ArtistNames(),
			Album:     t.Album.Name,
			SpotifyID: t.ID,
		}
		if f, ok := features[t.ID]; ok {
			var res enrichment.Result
			applyFeatures(&res, f)
			s.BPM = res.BPM
			s.Key = res.CamelotKey
		}
		out = append(out, s)
	}
	return out, nil
}
