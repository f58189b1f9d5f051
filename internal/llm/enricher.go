package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cesargomez89/requestline/internal/camelot"
	"github.com/cesargomez89/requestline/internal/constants"
	"github.com/cesargomez89/requestline/internal/enrichment"
	"github.com/cesargomez89/requestline/internal/logger"
)

const systemPrompt = `You identify songs for a DJ request queue.
Given a song name and artist as typed by a guest, reply with ONLY a JSON object:
{"songName": "<official title>", "artist": "<official artist>", "bpm": <integer tempo>, "key": <pitch class 0-11 or note name>, "mode": <1 for major, 0 for minor>}
If you do not recognise the song, reply with {"found": false}.`

// Enricher resolves submissions with a language model.
type Enricher struct {
	client *Client
	logger *logger.Logger
}

var _ enrichment.Source = (*Enricher)(nil)

func NewEnricher(client *Client, log *logger.Logger) *Enricher {
	return &Enricher{
		client: client,
		logger: log.WithComponent("llm"),
	}
}

func (e *Enricher) Name() string {
	return constants.ProviderOpenAI
}

// songInfo accepts numbers or strings for the loosely typed fields.
type songInfo struct {
	Found    *bool           `json:"found"`
	SongName string          `json:"songName"`
	Artist   string          `json:"artist"`
	BPM      json.RawMessage `json:"bpm"`
	Key      json.RawMessage `json:"key"`
	Mode     json.RawMessage `json:"mode"`
}

func (e *Enricher) Search(ctx context.Context, songName, artist string) (enrichment.Result, error) {
	content, err := e.client.Chat(ctx, []ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf("Song: %s\nArtist: %s", songName, artist)},
	})
	if err != nil {
		return enrichment.Result{}, err
	}
	return ParseResult(content, songName, artist)
}

// ByID has no catalog to consult, so it searches by text.
func (e *Enricher) ByID(ctx context.Context, _ string, songName, artist string) (enrichment.Result, error) {
	return e.Search(ctx, songName, artist)
}

// ParseResult decodes a model reply. Malformed replies are errors so they are
// not cached; an explicit "found": false is a definite miss.
func ParseResult(content, songName, artist string) (enrichment.Result, error) {
	raw, err := ExtractJSONObject(content)
	if err != nil {
		return enrichment.Result{}, err
	}

	var info songInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return enrichment.Result{}, fmt.Errorf("failed to decode model reply: %w", err)
	}

	if info.Found != nil && !*info.Found {
		return enrichment.Fallback(songName, artist), nil
	}
	if strings.TrimSpace(info.SongName) == "" || strings.TrimSpace(info.Artist) == "" {
		return enrichment.Fallback(songName, artist), nil
	}

	res := enrichment.Result{
		CorrectedName:   strings.TrimSpace(info.SongName),
		CorrectedArtist: strings.TrimSpace(info.Artist),
		Matched:         true,
	}

	if bpm, ok := parseNumber(info.BPM); ok && bpm > 0 {
		v := int(math.Round(bpm))
		res.BPM = &v
	}

	pitch, mode := parsePitch(info.Key), parseMode(info.Mode)
	res.CamelotKey = camelot.ToCamelot(pitch, mode)
	res.RegularKey = camelot.ToRegularKey(pitch, mode)

	return res, nil
}

func parseNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func parsePitch(raw json.RawMessage) int {
	if n, ok := parseNumber(raw); ok {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return -1
	}
	// "F# minor" style answers carry the mode too; the note is the first word.
	if fields := strings.Fields(s); len(fields) > 0 {
		if pc, ok := camelot.ParsePitchClass(fields[0]); ok {
			return pc
		}
	}
	return -1
}

func parseMode(raw json.RawMessage) int {
	if n, ok := parseNumber(raw); ok {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return -1
	}
	if m, ok := camelot.ParseMode(s); ok {
		return m
	}
	return -1
}
