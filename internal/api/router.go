package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jfmyers/gamelobby-go/internal/api/handler"
	apimiddleware "github.com/jfmyers/gamelobby-go/internal/api/middleware"
	"github.com/jfmyers/gamelobby-go/internal/broadcast"
	"github.com/jfmyers/gamelobby-go/internal/middleware"
	"github.com/jfmyers/gamelobby-go/internal/services/claim"
	"github.com/jfmyers/gamelobby-go/internal/services/game"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	GameService *game.Service
	Resolver    *claim.Resolver
	HubManager  *broadcast.HubManager
	WSHandler   http.Handler
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.GameService, cfg.Resolver, cfg.HubManager)
	userHandler := handler.NewUserHandler(cfg.GameService)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/user/new", userHandler.Create).Methods(http.MethodPost)

	api.HandleFunc("/game/new", gameHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/game/{gameId}/info", gameHandler.Info).Methods(http.MethodGet)
	api.HandleFunc("/game/{gameId}/add", gameHandler.AddPlayer).Methods(http.MethodPost)
	api.HandleFunc("/game/{gameId}/claim", gameHandler.Claim).Methods(http.MethodPost)
	api.HandleFunc("/game/{gameId}/name", gameHandler.NamePlayer).Methods(http.MethodPost)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// The websocket endpoint skips the API middleware; upgraded
	// connections outlive any per-request logging scope
	if cfg.WSHandler != nil {
		r.Handle("/ws/game/{gameId}", cfg.WSHandler).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
