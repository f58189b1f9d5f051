package spotify

import "strings"

// Track is the subset of a Spotify track object used for enrichment.
type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []Artist `json:"artists"`
	Album   Album    `json:"album"`
	URI     string   `json:"uri"`
}

// ArtistNames joins the credited artists the way Spotify displays them.
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

// Artist represents a Spotify artist.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album represents a simplified Spotify album.
type Album struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AudioFeatures carries tempo and key analysis. Key and Mode are -1 when
// Spotify could not detect them.
type AudioFeatures struct {
	ID    string  `json:"id"`
	Tempo float64 `json:"tempo"`
	Key   int     `json:"key"`
	Mode  int     `json:"mode"`
}

type searchResponse struct {
	Tracks struct {
		Items []Track `json:"items"`
	} `json:"tracks"`
}

type audioFeaturesBatch struct {
	AudioFeatures []*AudioFeatures `json:"audio_features"`
}

// Suggestion is one typeahead entry for the submission form.
type Suggestion struct {
	BPM       *int    `json:"bpm"`
	Key       *string `json:"key"`
	SongName  string  `json:"songName"`
	Artist    string  `json:"artist"`
	Album     string  `json:"album"`
	SpotifyID string  `json:"spotifyId"`
}
