package httpapp

import (
	"context"
	"net/http"
	"strings"

	"github.com/cesargomez89/requestline/internal/app"
	"github.com/cesargomez89/requestline/internal/live"
	"github.com/cesargomez89/requestline/internal/logger"
	"github.com/cesargomez89/requestline/internal/spotify"
)

// Suggester serves typeahead suggestions for the submission form.
type Suggester interface {
	Suggest(ctx context.Context, q string) ([]spotify.Suggestion, error)
}

// HealthChecker is a dependency checked by /healthz.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Handler struct {
	Sessions    *app.SessionService
	Submissions *app.SubmissionService
	Suggester   Suggester
	Hub         *live.Hub
	Checks      map[string]HealthChecker
	Logger      *logger.Logger
	PublicURL   string
}

func NewHandler(sessions *app.SessionService, submissions *app.SubmissionService, hub *live.Hub, log *logger.Logger) *Handler {
	return &Handler{
		Sessions:    sessions,
		Submissions: submissions,
		Hub:         hub,
		Checks:      make(map[string]HealthChecker),
		Logger:      log.WithComponent("http"),
	}
}

// baseURL is the configured public URL, or one derived from the request.
func (h *Handler) baseURL(r *http.Request) string {
	if h.PublicURL != "" {
		return strings.TrimRight(h.PublicURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
