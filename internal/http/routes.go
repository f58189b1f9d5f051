package httpapp

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cesargomez89/requestline/internal/app"
	"github.com/cesargomez89/requestline/internal/domain"
	"github.com/cesargomez89/requestline/internal/http/dto"
)

// NewRouter mounts every route on a chi router with the standard middleware.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Get("/sessions", h.ListSessions)
		r.Get("/sessions/{id}", h.GetSession)
		r.Delete("/sessions/{id}", h.DeactivateSession)
		r.Get("/sessions/{id}/live", h.Live)

		r.Post("/submit", h.Submit)
		r.Get("/submissions", h.ListSubmissions)
		r.Delete("/clear", h.Clear)

		r.Post("/update-settings", h.UpdateSettings)
		r.Get("/settings", h.GetSettings)

		r.Get("/spotify/suggestions", h.Suggestions)
	})

	r.Get("/qr/{sessionId}", h.QRPage)
	r.Get("/healthz", h.Health)
	r.Get("/{code}", h.ShortCode)
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	session, err := h.Sessions.CreateSession(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.SessionResponse{Success: true, Session: dto.NewSession(session, nil)})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.Sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	settings := app.ResolveSettings(session)
	h.writeJSON(w, http.StatusOK, dto.SessionResponse{Success: true, Session: dto.NewSession(session, &settings)})
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Sessions.ListSessions(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]dto.Session, 0, len(sessions))
	for i := range sessions {
		out = append(out, dto.NewSession(&sessions[i], nil))
	}
	h.writeJSON(w, http.StatusOK, dto.SessionsResponse{Success: true, Sessions: out})
}

func (h *Handler) DeactivateSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.DeactivateSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := h.Sessions.GetSession(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// Closed sessions keep their data but take no new listeners.
	if !session.IsActive {
		h.writeError(w, r, domain.ErrNotFound)
		return
	}
	h.Hub.ServeWS(w, r, id)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	sub, err := h.Submissions.Submit(r.Context(), app.SubmitInput{
		SessionID: req.SessionID,
		SongName:  req.SongName,
		Artist:    req.Artist,
		UserName:  req.UserName,
		SpotifyID: req.SpotifyID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.SubmitResponse{Success: true, ID: sub.ID})
}

func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Submissions.List(r.Context(), r.URL.Query().Get("sessionId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewSubmissions(subs))
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	var req dto.ClearRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.URL.Query().Get("sessionId")
	}

	n, err := h.Submissions.Clear(r.Context(), req.SessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.ClearResponse{Success: true, DeletedCount: n})
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	if err := h.Sessions.UpdateSettings(r.Context(), req.SessionID, req.ToUpdate()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Sessions.Settings(r.Context(), r.URL.Query().Get("sessionId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

type suggestionsResponse struct {
	Suggestions interface{} `json:"suggestions"`
}

// Suggestions answers with an empty list when Spotify is off or failing.
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" || h.Suggester == nil {
		h.writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: []struct{}{}})
		return
	}

	suggestions, err := h.Suggester.Suggest(r.Context(), q)
	if err != nil {
		h.Logger.Warn("Suggestions unavailable", "query", q, "error", err)
		h.writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: []struct{}{}})
		return
	}
	h.writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: suggestions})
}

type healthResponse struct {
	Checks map[string]string `json:"checks,omitempty"`
	Status string            `json:"status"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	for name, check := range h.Checks {
		if err := check.Health(ctx); err != nil {
			h.Logger.Warn("Health check failed", "check", name, "error", err)
			if resp.Checks == nil {
				resp.Checks = make(map[string]string)
			}
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	h.writeJSON(w, status, resp)
}

// ShortCode redirects a bare session code to its submission page.
func (h *Handler) ShortCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !dto.IsSessionCode(code) {
		h.writeError(w, r, domain.ErrNotFound)
		return
	}
	http.Redirect(w, r, "/session/"+code, http.StatusFound)
}
