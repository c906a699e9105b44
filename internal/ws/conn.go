package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jfmyers/gamelobby-go/internal/broadcast"
	"github.com/jfmyers/gamelobby-go/internal/model"
	"github.com/jfmyers/gamelobby-go/internal/services/registry"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size in bytes
	maxMessageSize = 4096
)

// State is the lifecycle state of one connection
type State int32

const (
	StateOpen State = iota
	StateSessionBound
	StatePlayerBound
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSessionBound:
		return "session_bound"
	case StatePlayerBound:
		return "player_bound"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn drives one websocket connection through its lifecycle: open, bind
// session, bind player, close. It owns the registry mutations for its
// connection id and the disconnect announcement on the way out.
type Conn struct {
	id     model.ConnectionID
	gameID model.GameID
	sock   *websocket.Conn

	registry *registry.Registry
	hubs     *broadcast.HubManager
	client   *broadcast.Client
	logger   *slog.Logger

	// replies carries direct acks from the read loop to the write pump
	replies chan []byte

	mu    sync.Mutex
	state State
}

func newConn(id model.ConnectionID, gameID model.GameID, sock *websocket.Conn, reg *registry.Registry, hubs *broadcast.HubManager, client *broadcast.Client, logger *slog.Logger) *Conn {
	return &Conn{
		id:       id,
		gameID:   gameID,
		sock:     sock,
		registry: reg,
		hubs:     hubs,
		client:   client,
		logger: logger.With(
			slog.String("conn_id", string(id)),
			slog.String("game_id", string(gameID))),
		replies: make(chan []byte, 16),
		state:   StateOpen,
	}
}

// ID returns the connection id assigned at upgrade time
func (c *Conn) ID() model.ConnectionID {
	return c.id
}

// State returns the connection's current lifecycle state
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conn) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// readLoop consumes inbound frames until the socket closes, then runs
// disconnect cleanup. Cleanup always runs to completion, whatever state
// the connection was in.
func (c *Conn) readLoop() {
	defer c.cleanup()

	c.sock.SetReadLimit(maxMessageSize)
	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				c.logger.Warn("connection read error", slog.Any("error", err))
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed frames are dropped; the connection stays open
			c.logger.Warn("ignoring malformed message", slog.Any("error", err))
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage routes one inbound frame based on its type
func (c *Conn) handleMessage(msg inboundMessage) {
	switch msg.Type {
	case TypeSessionUser:
		c.handleSessionUser(msg)
	case TypeSessionPlayer:
		c.handleSessionPlayer(msg)
	case TypeClientMessage:
		c.handleClientMessage(msg)
	default:
		c.logger.Warn("ignoring unknown message type", slog.String("type", msg.Type))
	}
}

// handleSessionUser binds connection -> session -> user in the registry
func (c *Conn) handleSessionUser(msg inboundMessage) {
	if msg.SessionID == "" || msg.UserID == "" {
		c.logger.Warn("ignoring session bind with missing ids")
		return
	}

	c.registry.BindSession(
		model.SessionID(msg.SessionID),
		model.UserID(msg.UserID),
		c.id,
		c.gameID,
	)
	c.setState(StateSessionBound)

	c.logger.Info("session bound",
		slog.String("session_id", msg.SessionID),
		slog.String("user_id", msg.UserID))

	c.reply(ackMessage{
		Type:      TypeSessionUser,
		SessionID: msg.SessionID,
		UserID:    msg.UserID,
	})
}

// handleSessionPlayer records the session's claim over a player
func (c *Conn) handleSessionPlayer(msg inboundMessage) {
	if msg.PlayerID == "" {
		c.logger.Warn("ignoring player bind with missing player id")
		return
	}

	sessionID, ok := c.registry.SessionOf(c.id)
	if !ok {
		// Client skipped the session bind; nothing to claim against
		c.logger.Warn("ignoring player bind on sessionless connection")
		return
	}

	c.registry.SetClaim(model.PlayerID(msg.PlayerID), c.id, c.gameID)
	c.setState(StatePlayerBound)

	c.logger.Info("player bound", slog.String("player_id", msg.PlayerID))

	c.reply(ackMessage{
		Type:      TypeSessionPlayer,
		SessionID: string(sessionID),
		PlayerID:  msg.PlayerID,
	})
}

// handleClientMessage relays a chat message to everyone in the room
func (c *Conn) handleClientMessage(msg inboundMessage) {
	c.hubs.Publish(c.gameID, model.NewChatEvent(msg.Message))
}

// reply queues a direct ack for the write pump
func (c *Conn) reply(ack ackMessage) {
	data, err := json.Marshal(ack)
	if err != nil {
		c.logger.Error("failed to encode ack", slog.Any("error", err))
		return
	}
	select {
	case c.replies <- data:
	default:
		c.logger.Warn("ack dropped - reply buffer full")
	}
}

// cleanup tears down everything the connection owns: its registry
// mappings, its room membership, and - if a player was claimed - the
// disconnect announcement. Each step tolerates already-missing state.
func (c *Conn) cleanup() {
	playerID, hadClaim := c.registry.Disconnect(c.id, c.gameID)
	c.hubs.Leave(c.gameID, c.client)
	if hadClaim {
		c.hubs.Publish(c.gameID, model.NewPlayerDisconnectedEvent(playerID, c.gameID))
		c.logger.Info("player disconnected", slog.String("player_id", string(playerID)))
	}
	c.setState(StateClosed)
	close(c.replies)
}

// writePump serializes all outbound traffic: room broadcasts, direct
// acks and keepalive pings share the single writer goroutine.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.sock.Close()
	}()

	for {
		select {
		case message, ok := <-c.client.Send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.sock.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.sock.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case reply, ok := <-c.replies:
			if !ok {
				return
			}
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, reply); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
