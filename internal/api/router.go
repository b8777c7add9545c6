package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tugochat/tugochat/internal/api/handler"
	"github.com/tugochat/tugochat/internal/api/middleware"
	"github.com/tugochat/tugochat/internal/gateway/ws"
	"github.com/tugochat/tugochat/internal/matchmaking"
	"github.com/tugochat/tugochat/internal/registry"
	"github.com/tugochat/tugochat/internal/twitch"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *twitch.AuthService
	Hub         *ws.Hub
	Registry    *registry.Registry
	Queue       *matchmaking.Queue
}

// NewRouter creates the HTTP router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	debugHandler := handler.NewDebugHandler(cfg.Registry, cfg.Queue)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Auth routes
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodGet)
	api.HandleFunc("/auth/callback", authHandler.Callback).Methods(http.MethodGet)
	api.HandleFunc("/auth/validate", authHandler.Validate).Methods(http.MethodGet)

	// Operator visibility
	api.HandleFunc("/debug/rooms", debugHandler.Rooms).Methods(http.MethodGet)
	api.HandleFunc("/debug/queue", debugHandler.Queue).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Websocket endpoint; no logging middleware, connections are long-lived
	r.Handle("/ws/{session_id}", cfg.Hub)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
