package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/jfmyers/gamelobby-go/internal/broadcast"
	"github.com/jfmyers/gamelobby-go/internal/model"
	"github.com/jfmyers/gamelobby-go/internal/services/registry"
)

// Handler upgrades websocket requests and runs the connection lifecycle.
// Each connection is scoped to the room in its URL for its whole life.
type Handler struct {
	registry *registry.Registry
	hubs     *broadcast.HubManager
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new websocket handler
func NewHandler(reg *registry.Registry, hubs *broadcast.HubManager, logger *slog.Logger) *Handler {
	return &Handler{
		registry: reg,
		hubs:     hubs,
		logger:   logger.With(slog.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles GET /ws/game/{gameId}
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["gameId"])
	if gameID == "" {
		http.Error(w, "game id required", http.StatusBadRequest)
		return
	}

	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	connID := model.ConnectionID("c_" + ulid.Make().String())

	// Joining the room happens before any message handling so the
	// connection sees every event published from here on
	client := h.hubs.Join(gameID, connID)
	conn := newConn(connID, gameID, sock, h.registry, h.hubs, client, h.logger)

	h.logger.Info("connection opened",
		slog.String("conn_id", string(connID)),
		slog.String("game_id", string(gameID)))

	go conn.writePump()
	conn.readLoop()
}
