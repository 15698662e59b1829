package handler

import (
	"commons/internal/model"
	"commons/internal/service"
	"net/http"
)

// AuthHandler issues player identities
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// RegisterPlayer handles POST /v1/auth/players
func (h *AuthHandler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterPlayerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authSvc.RegisterPlayer(req.Label)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}
