package handler

import (
	"commons/internal/model"
	"commons/internal/service"
	"commons/internal/transport/rest/middleware"
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	sessions *service.SessionManager
	engine   *service.RoundEngine
	queries  *service.QueryService
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionManager, engine *service.RoundEngine, queries *service.QueryService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		engine:   engine,
		queries:  queries,
		logger:   logger,
	}
}

// Start handles POST /v1/codes/{code}/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req model.StartSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessions.StartSession(r.Context(), mux.Vars(r)["code"], middleware.GetPlayerID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// List handles GET /v1/sessions?scope=owned|played|all|active
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	var query func(context.Context, string) ([]*model.Session, error)
	switch scope := r.URL.Query().Get("scope"); scope {
	case "owned":
		query = h.queries.OwnedSessions
	case "played":
		query = h.queries.PlayedSessions
	case "", "all":
		query = h.queries.AllSessions
	case "active":
		query = h.queries.ActiveSessions
	default:
		writeError(w, http.StatusBadRequest, "unknown scope "+scope)
		return
	}

	sessions, err := query(r.Context(), middleware.GetPlayerID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
	})
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Rounds handles GET /v1/sessions/{id}/rounds
func (h *SessionHandler) Rounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.engine.History(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rounds": rounds,
	})
}

// Scores handles GET /v1/sessions/{id}/scores
func (h *SessionHandler) Scores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.sessions.Scores(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scores": scores,
	})
}
