package handler

import (
	"commons/internal/service"
	"commons/internal/transport/rest/middleware"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CodeHandler handles game code endpoints
type CodeHandler struct {
	codeSvc *service.CodeService
	logger  *zap.Logger
}

// NewCodeHandler creates a new code handler
func NewCodeHandler(codeSvc *service.CodeService, logger *zap.Logger) *CodeHandler {
	return &CodeHandler{
		codeSvc: codeSvc,
		logger:  logger,
	}
}

// CreateCodeRequest is the request body for creating a code. An empty code asks for a generated one.
type CreateCodeRequest struct {
	Code string `json:"code"`
}

// JoinRequest is the request body for joining a code
type JoinRequest struct {
	Nickname string `json:"nickname"`
}

// Create handles POST /v1/codes
func (h *CodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	anchor, err := h.codeSvc.CreateCode(r.Context(), req.Code, middleware.GetPlayerID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, anchor)
}

// Join handles POST /v1/codes/{code}/join
func (h *CodeHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	anchor, err := h.codeSvc.JoinWithCode(r.Context(), mux.Vars(r)["code"], middleware.GetPlayerID(r.Context()), req.Nickname)
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, anchor)
}

// Players handles GET /v1/codes/{code}/players
func (h *CodeHandler) Players(w http.ResponseWriter, r *http.Request) {
	players, err := h.codeSvc.ListPlayers(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"players": players,
	})
}
