package rest

import (
	"commons/internal/service"
	"commons/internal/transport/rest/handler"
	"commons/internal/transport/rest/middleware"
	"commons/internal/transport/ws"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	CodeService    *service.CodeService
	SessionManager *service.SessionManager
	RoundEngine    *service.RoundEngine
	QueryService   *service.QueryService
	WSHub          *ws.Hub
	CORSOrigins    string
	Logger         *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	codeHandler := handler.NewCodeHandler(c.CodeService, c.Logger)
	sessionHandler := handler.NewSessionHandler(c.SessionManager, c.RoundEngine, c.QueryService, c.Logger)
	roundHandler := handler.NewRoundHandler(c.RoundEngine, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.CORSOrigins, c.Logger)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware(c.CORSOrigins))
	r.Use(accessLog(c.Logger))

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/players", authHandler.RegisterPlayer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/docs", handler.Docs).Methods("GET")

	// WebSocket (token in query param)
	v1.HandleFunc("/ws/signals", wsHandler.SignalsWS).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/codes", codeHandler.Create).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/codes/{code}/join", codeHandler.Join).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/codes/{code}/players", codeHandler.Players).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/codes/{code}/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/codes/{code}/round", roundHandler.Current).Methods("GET", "OPTIONS")

	playerRoutes.HandleFunc("/sessions", sessionHandler.List).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/{id}/rounds", sessionHandler.Rounds).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/{id}/scores", sessionHandler.Scores).Methods("GET", "OPTIONS")

	playerRoutes.HandleFunc("/rounds/{id}", roundHandler.Get).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/rounds/{id}/moves", roundHandler.SubmitMove).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rounds/{id}/close", roundHandler.Close).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func accessLog(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The websocket upgrade needs the raw writer to hijack.
			if r.URL.Path == "/v1/ws/signals" {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}
