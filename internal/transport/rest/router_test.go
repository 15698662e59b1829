package rest

import (
	"commons/internal/service"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestRouter() http.Handler {
	return NewRouter(&Container{
		AuthService: service.NewAuthService("test-secret", time.Hour),
		CORSOrigins: "https://play.example",
		Logger:      zap.NewNop(),
	})
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPreflightSkipsAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/rounds/r1/close", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://play.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPlayerRoutesRequireToken(t *testing.T) {
	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/v1/codes"},
		{http.MethodPost, "/v1/codes/ABCDE/join"},
		{http.MethodPost, "/v1/codes/ABCDE/sessions"},
		{http.MethodGet, "/v1/sessions"},
		{http.MethodPost, "/v1/rounds/r1/moves"},
		{http.MethodPost, "/v1/rounds/r1/close"},
	} {
		rec := httptest.NewRecorder()
		newTestRouter().ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
	}
}

func TestRegisterPlayerIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/players", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token"`)
}
