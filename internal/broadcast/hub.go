package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/jfmyers/gamelobby-go/internal/model"
)

// sendBufferSize is the per-client outbound buffer. A client that falls
// this far behind starts dropping messages rather than stalling the room.
const sendBufferSize = 256

// Client is one subscriber of a room: a handle for a live connection.
// The transport layer drains Send and writes to the socket.
type Client struct {
	ConnID model.ConnectionID
	Send   chan []byte
}

// NewClient creates a subscriber handle for a connection
func NewClient(connID model.ConnectionID) *Client {
	return &Client{
		ConnID: connID,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// Hub fans events out to every client in a single room. All deliveries
// flow through one Run loop, so for a fixed client events arrive in
// publish order. There is no queue or replay: clients only see events
// published while they are registered.
type Hub struct {
	gameID  model.GameID
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub creates a new Hub for a room
func NewHub(gameID model.GameID, logger *slog.Logger) *Hub {
	return &Hub{
		gameID:     gameID,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("game_id", string(gameID))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client joined room",
				slog.String("conn_id", string(client.ConnID)),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Debug("client left room",
					slog.String("conn_id", string(client.ConnID)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					h.logger.Warn("broadcast dropped - client buffer full",
						slog.String("conn_id", string(client.ConnID)))
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast queues a raw message for delivery to all clients
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast dropped - hub buffer full")
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	close(h.done)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager owns one hub per room, created lazily on first reference.
// Rooms are never destroyed by the core; CleanupEmptyHubs exists for the
// process owner to call on whatever cadence it likes.
type HubManager struct {
	hubs   map[model.GameID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.GameID]*Hub),
		logger: logger.With(slog.String("component", "broadcast")),
	}
}

// Join registers a connection with its room's hub, creating the hub on
// first reference, and returns the subscriber handle.
func (m *HubManager) Join(gameID model.GameID, connID model.ConnectionID) *Client {
	client := NewClient(connID)
	m.getOrCreateHub(gameID).Register(client)
	return client
}

// Leave removes a subscriber from its room's hub
func (m *HubManager) Leave(gameID model.GameID, client *Client) {
	hub := m.GetHub(gameID)
	if hub == nil {
		return
	}
	hub.Unregister(client)
}

// Publish delivers an event to every connection currently in the room.
// Connections not joined at publish time never see it.
func (m *HubManager) Publish(gameID model.GameID, event model.Event) {
	hub := m.GetHub(gameID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		m.logger.Error("failed to encode event",
			slog.String("game_id", string(gameID)),
			slog.String("type", string(event.Type)),
			slog.Any("error", err))
		return
	}
	hub.Broadcast(data)
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(gameID model.GameID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[gameID]
}

// getOrCreateHub returns the hub for a room, creating and starting one
// if it doesn't exist
func (m *HubManager) getOrCreateHub(gameID model.GameID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[gameID]; ok {
		return hub
	}

	hub := NewHub(gameID, m.logger)
	m.hubs[gameID] = hub
	go hub.Run()
	return hub
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for gameID, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, gameID)
		}
	}
}

// Shutdown closes every hub
func (m *HubManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for gameID, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, gameID)
	}
}
