package handler

import (
	"commons/internal/model"
	"commons/internal/service"
	"commons/internal/transport/rest/middleware"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RoundHandler handles round endpoints
type RoundHandler struct {
	engine *service.RoundEngine
	logger *zap.Logger
}

// NewRoundHandler creates a new round handler
func NewRoundHandler(engine *service.RoundEngine, logger *zap.Logger) *RoundHandler {
	return &RoundHandler{
		engine: engine,
		logger: logger,
	}
}

// Get handles GET /v1/rounds/{id}
func (h *RoundHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, err := h.engine.GetRound(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Current handles GET /v1/codes/{code}/round
func (h *RoundHandler) Current(w http.ResponseWriter, r *http.Request) {
	round, err := h.engine.CurrentRoundForCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

// SubmitMove handles POST /v1/rounds/{id}/moves
func (h *RoundHandler) SubmitMove(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitMoveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	move, err := h.engine.SubmitMove(r.Context(), mux.Vars(r)["id"], middleware.GetPlayerID(r.Context()), req.Amount)
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, move)
}

// Close handles POST /v1/rounds/{id}/close. Awaiting moves is not an error.
func (h *RoundHandler) Close(w http.ResponseWriter, r *http.Request) {
	resp, err := h.engine.TryCloseRound(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
