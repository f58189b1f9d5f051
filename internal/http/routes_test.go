package httpapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/requestline/internal/app"
	"github.com/cesargomez89/requestline/internal/enrichment"
	"github.com/cesargomez89/requestline/internal/live"
	"github.com/cesargomez89/requestline/internal/logger"
	"github.com/cesargomez89/requestline/internal/spotify"
	"github.com/cesargomez89/requestline/internal/store"
)

type fakeSuggester struct {
	err         error
	suggestions []spotify.Suggestion
}

func (f fakeSuggester) Suggest(ctx context.Context, q string) ([]spotify.Suggestion, error) {
	return f.suggestions, f.err
}

type fakeCheck struct{ err error }

func (f fakeCheck) Health(ctx context.Context) error { return f.err }

func setupServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	log := logger.Discard()

	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test_http.db"), log)
	require.NoError(t, err)

	hub := live.NewHub(log)
	go hub.Run()

	enricher := app.NewEnricher(db, enrichment.Noop{}, hub, 0, log)
	sessions := app.NewSessionService(db, hub, log)
	codes := []string{"AB12", "CD34", "EF56"}
	sessions.NewCode = func() (string, error) {
		c := codes[0]
		codes = append(codes[1:], c)
		return c, nil
	}
	submissions := app.NewSubmissionService(db, enricher, hub, log)

	h := NewHandler(sessions, submissions, hub, log)
	h.PublicURL = "https://requests.example.com"
	h.Checks["db"] = db

	t.Cleanup(func() {
		_ = enricher.Shutdown(context.Background())
		hub.Stop()
		db.Close()
	})
	return h, NewRouter(h)
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createSession(t *testing.T, router http.Handler, name string) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/sessions", map[string]string{"name": name})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session := decode(t, rec)["session"].(map[string]interface{})
	return session["id"].(string)
}

func TestCreateSession(t *testing.T) {
	_, router := setupServer(t)

	rec := do(t, router, http.MethodPost, "/api/sessions", map[string]string{"name": "Friday Party"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	session := body["session"].(map[string]interface{})
	assert.Equal(t, "AB12", session["id"])
	assert.Equal(t, "Friday Party", session["name"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`, session["createdAt"])
}

func TestCreateSession_Errors(t *testing.T) {
	_, router := setupServer(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing name", map[string]string{}},
		{"blank name", map[string]string{"name": "   "}},
		{"malformed json", "{not json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/sessions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetSession(t *testing.T) {
	_, router := setupServer(t)
	id := createSession(t, router, "Gala")

	rec := do(t, router, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode(t, rec)["session"].(map[string]interface{})
	settings := session["settings"].(map[string]interface{})
	assert.Equal(t, "Gala", settings["welcomeMessage"])
	assert.Equal(t, "#1a1a2e", settings["background"])

	rec = do(t, router, http.MethodGet, "/api/sessions/ZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndDeactivateSessions(t *testing.T) {
	_, router := setupServer(t)
	first := createSession(t, router, "one")
	second := createSession(t, router, "two")

	rec := do(t, router, http.MethodDelete, "/api/sessions/"+first, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sessions := decode(t, rec)["sessions"].([]interface{})
	require.Len(t, sessions, 1)
	assert.Equal(t, second, sessions[0].(map[string]interface{})["id"])

	rec = do(t, router, http.MethodDelete, "/api/sessions/ZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitAndList(t *testing.T) {
	_, router := setupServer(t)
	id := createSession(t, router, "Party")

	rec := do(t, router, http.MethodPost, "/api/submit", map[string]string{
		"sessionId": id,
		"songName":  "Song",
		"artist":    "Artist",
		"userName":  "sam",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["id"])

	rec = do(t, router, http.MethodGet, "/api/submissions?sessionId="+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Song", rows[0]["song_name"])
	assert.Equal(t, "Song", rows[0]["original_song_name"])
	assert.Equal(t, "sam", rows[0]["user_name"])
	assert.Nil(t, rows[0]["bpm"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`, rows[0]["created_at"])
}

func TestSubmit_Errors(t *testing.T) {
	_, router := setupServer(t)
	id := createSession(t, router, "Party")

	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"missing session", map[string]string{"songName": "a", "artist": "b"}, http.StatusBadRequest},
		{"missing song", map[string]string{"sessionId": id, "artist": "b"}, http.StatusBadRequest},
		{"blank artist", map[string]string{"sessionId": id, "songName": "a", "artist": "  "}, http.StatusBadRequest},
		{"unknown session", map[string]string{"sessionId": "ZZZZ", "songName": "a", "artist": "b"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/submit", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, router, http.MethodGet, "/api/submissions?sessionId="+id, nil)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestListSubmissions_Errors(t *testing.T) {
	_, router := setupServer(t)

	rec := do(t, router, http.MethodGet, "/api/submissions", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/submissions?sessionId=ZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClear(t *testing.T) {
	_, router := setupServer(t)
	a := createSession(t, router, "A")
	b := createSession(t, router, "B")

	for _, id := range []string{a, a, b} {
		rec := do(t, router, http.MethodPost, "/api/submit", map[string]string{"sessionId": id, "songName": "s", "artist": "x"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, router, http.MethodDelete, "/api/clear", map[string]string{"sessionId": a})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["deletedCount"])

	rec = do(t, router, http.MethodGet, "/api/submissions?sessionId="+b, nil)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Len(t, rows, 1)

	rec = do(t, router, http.MethodDelete, "/api/clear", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, router, http.MethodDelete, "/api/clear", map[string]string{"sessionId": "ZZZZ"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettings(t *testing.T) {
	_, router := setupServer(t)
	id := createSession(t, router, "Party")

	rec := do(t, router, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to the Song Request Queue", decode(t, rec)["welcomeMessage"])

	rec = do(t, router, http.MethodPost, "/api/update-settings", map[string]string{
		"sessionId":       id,
		"subtitleMessage": "Dance all night",
		"background":      "#000000",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/settings?sessionId="+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode(t, rec)
	assert.Equal(t, "Party", settings["welcomeMessage"])
	assert.Equal(t, "Dance all night", settings["subtitleMessage"])
	assert.Equal(t, "#000000", settings["background"])

	rec = do(t, router, http.MethodGet, "/api/settings?sessionId=ZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/update-settings", map[string]string{"sessionId": "ZZZZ"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/update-settings", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestions(t *testing.T) {
	h, router := setupServer(t)

	rec := do(t, router, http.MethodGet, "/api/spotify/suggestions?q=queen", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"suggestions":[]}`, rec.Body.String())

	bpm := 72
	h.Suggester = fakeSuggester{suggestions: []spotify.Suggestion{
		{SongName: "Bohemian Rhapsody", Artist: "Queen", Album: "A Night at the Opera", SpotifyID: "sp1", BPM: &bpm},
	}}
	rec = do(t, router, http.MethodGet, "/api/spotify/suggestions?q=queen", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	suggestions := decode(t, rec)["suggestions"].([]interface{})
	require.Len(t, suggestions, 1)
	first := suggestions[0].(map[string]interface{})
	assert.Equal(t, "Bohemian Rhapsody", first["songName"])
	assert.EqualValues(t, 72, first["bpm"])
	assert.Nil(t, first["key"])

	rec = do(t, router, http.MethodGet, "/api/spotify/suggestions?q=", nil)
	assert.JSONEq(t, `{"suggestions":[]}`, rec.Body.String())

	h.Suggester = fakeSuggester{err: errors.New("upstream down")}
	rec = do(t, router, http.MethodGet, "/api/spotify/suggestions?q=queen", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"suggestions":[]}`, rec.Body.String())
}

func TestQRPage(t *testing.T) {
	_, router := setupServer(t)
	id := createSession(t, router, "Party")

	rec := do(t, router, http.MethodGet, "/qr/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Body.String(), "data:image/png;base64,")
	assert.Contains(t, rec.Body.String(), "https://requests.example.com/"+id)

	rec = do(t, router, http.MethodGet, "/qr/ZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShortCode(t *testing.T) {
	_, router := setupServer(t)

	tests := []struct {
		path     string
		status   int
		location string
	}{
		{"/AB12", http.StatusFound, "/session/AB12"},
		{"/ZZ99", http.StatusFound, "/session/ZZ99"},
		{"/ab12", http.StatusNotFound, ""},
		{"/AB123", http.StatusNotFound, ""},
		{"/AB1", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, rec.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
		})
	}
}

func TestHealth(t *testing.T) {
	h, router := setupServer(t)

	rec := do(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	h.Checks["redis"] = fakeCheck{err: errors.New("connection refused")}
	rec = do(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unavailable", body["checks"].(map[string]interface{})["redis"])
}

func TestBaseURLFromRequest(t *testing.T) {
	h := &Handler{}
	req := httptest.NewRequest(http.MethodGet, "/qr/AB12", nil)
	req.Host = "party.local:8080"
	assert.Equal(t, "http://party.local:8080", h.baseURL(req))

	req.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://party.local:8080", h.baseURL(req))

	h.PublicURL = "https://example.com/"
	assert.Equal(t, "https://example.com", h.baseURL(req))
}

func TestValidationErrorsListFields(t *testing.T) {
	_, router := setupServer(t)
	id := createSession(t, router, "Party")

	rec := do(t, router, http.MethodPost, "/api/submit", map[string]string{
		"sessionId": id,
		"artist":    "Artist",
		"userName":  strings.Repeat("u", 101),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	fields := body["fields"].(map[string]interface{})
	assert.Equal(t, "is required", fields["songName"])
	assert.Equal(t, "must be at most 100 characters", fields["userName"])

	rec = do(t, router, http.MethodGet, "/api/submissions?sessionId="+id, nil)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/sessions/ZZZZ", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	_, hasFields := decode(t, rec)["fields"]
	assert.False(t, hasFields)
}

func TestLiveRejectsClosedSession(t *testing.T) {
	_, router := setupServer(t)
	id := createSession(t, router, "Party")

	rec := do(t, router, http.MethodDelete, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/sessions/"+id+"/live", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/sessions/ZZZZ/live", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
