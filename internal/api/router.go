package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkallio/harvestmate/internal/middleware"
	"github.com/mkallio/harvestmate/internal/room"
	"github.com/mkallio/harvestmate/internal/transport"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Registry *room.Registry
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := NewRoomHandler(cfg.Registry)
	wsHandler := transport.NewHandler(cfg.Registry, cfg.Logger)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, panicHandler)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{room_id}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// The websocket endpoint skips the logging middleware: its requests
	// live for the whole game and would only be logged at teardown
	r.Handle("/ws", recoveryMiddleware(wsHandler)).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func panicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	WriteError(w, &httpError{status: http.StatusInternalServerError, apiError: APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
	}})
}
