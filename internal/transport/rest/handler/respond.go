package handler

import (
	"commons/internal/service"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// StatusFor maps a service error to its HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrCollaboratorUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrInvalidNickname),
		errors.Is(err, service.ErrInvalidParams),
		errors.Is(err, service.ErrNegativeAmount):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotAParticipant),
		errors.Is(err, service.ErrNotCodeCreator):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUnknownCode),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrRoundNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateNickname),
		errors.Is(err, service.ErrAlreadyJoined),
		errors.Is(err, service.ErrDuplicateMove),
		errors.Is(err, service.ErrRoundNotOpen),
		errors.Is(err, service.ErrEmptyRoster):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, logger *zap.Logger, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, status, http.StatusText(status))
		return
	}
	writeError(w, status, err.Error())
}

// decodeBody reads an optional JSON body; an empty body leaves v untouched
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
