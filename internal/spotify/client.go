// Package spotify talks to the Spotify Web API with app-level credentials to
// resolve tracks and their audio features.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cesargomez89/requestline/internal/httpclient"
)

// ErrUnavailable is returned when no access token could be obtained.
var ErrUnavailable = errors.New("spotify unavailable")

// ErrNotFound is returned for unknown track ids.
var ErrNotFound = errors.New("spotify resource not found")

// Client is a minimal Spotify Web API client.
type Client struct {
	http    *httpclient.Client
	tokens  *TokenCache
	baseURL string
}

// NewClient creates a client against baseURL (e.g. https://api.spotify.com/v1).
func NewClient(httpClient *httpclient.Client, tokens *TokenCache, baseURL string) *Client {
	return &Client{
		http:    httpClient,
		tokens:  tokens,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c.tokens != nil && c.tokens.Enabled()
}

// SearchTracks runs a track search and returns up to limit items.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))

	var resp searchResponse
	if err := c.get(ctx, "/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("search tracks: %w", err)
	}
	return resp.Tracks.Items, nil
}

// GetTrack fetches a single track by id.
func (c *Client) GetTrack(ctx context.Context, id string) (*Track, error) {
	var track Track
	if err := c.get(ctx, "/tracks/"+url.PathEscape(id), &track); err != nil {
		return nil, fmt.Errorf("get track %s: %w", id, err)
	}
	return &track, nil
}

// AudioFeatures fetches tempo and key analysis for one track.
func (c *Client) AudioFeatures(ctx context.Context, id string) (*AudioFeatures, error) {
	var features AudioFeatures
	if err := c.get(ctx, "/audio-features/"+url.PathEscape(id), &features); err != nil {
		return nil, fmt.Errorf("get audio features %s: %w", id, err)
	}
	return &features, nil
}

// SeveralAudioFeatures fetches analysis for many tracks in one request.
// Tracks without analysis are absent from the returned map.
func (c *Client) SeveralAudioFeatures(ctx context.Context, ids []string) (map[string]*AudioFeatures, error) {
	out := make(map[string]*AudioFeatures, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))

	var resp audioFeaturesBatch
	if err := c.get(ctx, "/audio-features?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("get several audio features: %w", err)
	}
	for _, f := range resp.AudioFeatures {
		if f != nil && f.ID != "" {
			out[f.ID] = f
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	if c.tokens == nil {
		return ErrUnavailable
	}
	token, ok := c.tokens.Token(ctx)
	if !ok {
		return ErrUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("spotify API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
