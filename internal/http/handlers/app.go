package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/imageprep"
	"studio/internal/infra"
	"studio/internal/session"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Config       *infra.Config
	Logger       zerolog.Logger
	Sessions     *session.Manager
	Orchestrator *session.Orchestrator
	Images       *imageprep.Service
}

// NewApp builds the handler container.
func NewApp(cfg *infra.Config, logger zerolog.Logger, sessions *session.Manager, orch *session.Orchestrator, images *imageprep.Service) *App {
	return &App{Config: cfg, Logger: logger, Sessions: sessions, Orchestrator: orch, Images: images}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]errorResponse{"error": {Code: errCode, Message: message}})
}

// sessionFromRequest resolves the {session_id} route param into a live
// session, writing the error response itself when it cannot.
func (a *App) sessionFromRequest(w http.ResponseWriter, r *http.Request) *session.Session {
	id := chi.URLParam(r, "session_id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "session_id required")
		return nil
	}
	s, err := a.Sessions.Get(id)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "session not found")
		return nil
	}
	return s
}

// writeDomainError maps engine errors onto HTTP statuses. Precondition
// refusals are conflicts or unprocessable inputs, never 500s.
func (a *App) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrFeatureBusy):
		a.error(w, http.StatusConflict, "busy", "a generation is already running for this feature")
	case errors.Is(err, domain.ErrMissingProductImage),
		errors.Is(err, domain.ErrMissingModelImage),
		errors.Is(err, domain.ErrMissingPrompt):
		a.error(w, http.StatusUnprocessableEntity, "missing_input", err.Error())
	case errors.Is(err, domain.ErrRecordNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrRecordNotReady):
		a.error(w, http.StatusConflict, "not_ready", err.Error())
	default:
		a.error(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
