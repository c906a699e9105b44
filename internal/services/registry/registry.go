// Package registry tracks the three identity layers of a live lobby:
// connection (one websocket), session (client token that survives
// reconnects) and user (durable account), plus the per-room claims that
// tie a session to a player seat.
//
// All state is process-local and lost on restart. The registry is the
// single source of truth for claims; nothing else stores them.
package registry

import (
	"sync"

	"github.com/jfmyers/gamelobby-go/internal/model"
)

// Registry is the shared mapping store. Connection and session maps are
// guarded by the top-level mutex; claim state is sharded per room so
// traffic in one game never contends with another.
//
// Lock order is always registry.mu before room.mu. Disconnect holds the
// write lock across its whole cleanup, so a concurrent SetClaim either
// resolves the session before the disconnect (and the disconnect then
// removes the claim) or after it (and no-ops); whichever takes the lock
// second wins, and neither can observe half-applied state.
type Registry struct {
	mu sync.RWMutex

	// connection -> session, session -> user
	conns    map[model.ConnectionID]model.SessionID
	sessions map[model.SessionID]model.UserID

	rooms map[model.GameID]*room
}

// room holds claim state for one game
type room struct {
	mu sync.RWMutex

	// user -> session -> claimed player
	userClaims map[model.UserID]map[model.SessionID]model.PlayerID
	// inverse index, player -> claiming session
	playerSessions map[model.PlayerID]model.SessionID
}

func newRoom() *room {
	return &room{
		userClaims:     make(map[model.UserID]map[model.SessionID]model.PlayerID),
		playerSessions: make(map[model.PlayerID]model.SessionID),
	}
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		conns:    make(map[model.ConnectionID]model.SessionID),
		sessions: make(map[model.SessionID]model.UserID),
		rooms:    make(map[model.GameID]*room),
	}
}

// BindSession records connection -> session and session -> user, and makes
// sure the user has a claims entry in the room. Safe to call repeatedly;
// later binds overwrite earlier ones.
func (r *Registry) BindSession(sessionID model.SessionID, userID model.UserID, connID model.ConnectionID, gameID model.GameID) {
	r.mu.Lock()
	r.conns[connID] = sessionID
	r.sessions[sessionID] = userID
	rm := r.roomLocked(gameID)
	r.mu.Unlock()

	rm.mu.Lock()
	if _, ok := rm.userClaims[userID]; !ok {
		rm.userClaims[userID] = make(map[model.SessionID]model.PlayerID)
	}
	rm.mu.Unlock()
}

// UserOf returns the user a session is bound to. A missing session is
// routine (fresh connection, not yet bound), not an error.
func (r *Registry) UserOf(sessionID model.SessionID) (model.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.sessions[sessionID]
	return userID, ok
}

// SessionOf returns the session bound to a connection
func (r *Registry) SessionOf(connID model.ConnectionID) (model.SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessionID, ok := r.conns[connID]
	return sessionID, ok
}

// ClaimsInRoom returns player -> session for every active claim in the
// room. The returned map is a copy; mutating it does not touch the
// registry.
func (r *Registry) ClaimsInRoom(gameID model.GameID) map[model.PlayerID]model.SessionID {
	r.mu.RLock()
	rm, ok := r.rooms[gameID]
	r.mu.RUnlock()

	claims := make(map[model.PlayerID]model.SessionID)
	if !ok {
		return claims
	}

	rm.mu.RLock()
	defer rm.mu.RUnlock()
	for playerID, sessionID := range rm.playerSessions {
		claims[playerID] = sessionID
	}
	return claims
}

// SessionsOf returns session -> player for a user's active claims in the
// room. Empty map if the user has none.
func (r *Registry) SessionsOf(userID model.UserID, gameID model.GameID) map[model.SessionID]model.PlayerID {
	r.mu.RLock()
	rm, ok := r.rooms[gameID]
	r.mu.RUnlock()

	sessions := make(map[model.SessionID]model.PlayerID)
	if !ok {
		return sessions
	}

	rm.mu.RLock()
	defer rm.mu.RUnlock()
	for sessionID, playerID := range rm.userClaims[userID] {
		sessions[sessionID] = playerID
	}
	return sessions
}

// SetClaim records that the session bound to connID now controls playerID
// in the room. A session holds at most one claim per room; claiming a
// second player replaces the first. No-op if the connection has no bound
// session or the user was never registered in the room.
func (r *Registry) SetClaim(playerID model.PlayerID, connID model.ConnectionID, gameID model.GameID) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionID, ok := r.conns[connID]
	if !ok {
		return
	}
	userID, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	rm, ok := r.rooms[gameID]
	if !ok {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	claims, ok := rm.userClaims[userID]
	if !ok {
		return
	}
	// Drop the session's previous claim, if any, before recording the new
	// one, so the inverse index never holds two players for one session.
	if prev, ok := claims[sessionID]; ok {
		delete(rm.playerSessions, prev)
	}
	claims[sessionID] = playerID
	rm.playerSessions[playerID] = sessionID
}

// Disconnect removes every mapping owned by the connection: the
// connection -> session and session -> user entries, and the session's
// claim in the room. Returns the player that was claimed, if any, so the
// caller can announce the disconnect. Tolerates partially-missing state.
func (r *Registry) Disconnect(connID model.ConnectionID, gameID model.GameID) (model.PlayerID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessionID, ok := r.conns[connID]
	if !ok {
		return "", false
	}
	delete(r.conns, connID)

	userID, ok := r.sessions[sessionID]
	if !ok {
		return "", false
	}
	delete(r.sessions, sessionID)

	rm, ok := r.rooms[gameID]
	if !ok {
		return "", false
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	claims, ok := rm.userClaims[userID]
	if !ok {
		return "", false
	}
	playerID, ok := claims[sessionID]
	if !ok {
		return "", false
	}
	delete(claims, sessionID)
	delete(rm.playerSessions, playerID)
	return playerID, true
}

// Reset clears all registry state. Intended for test isolation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns = make(map[model.ConnectionID]model.SessionID)
	r.sessions = make(map[model.SessionID]model.UserID)
	r.rooms = make(map[model.GameID]*room)
}

// roomLocked returns the room for a game, creating it if needed.
// Caller must hold r.mu for writing.
func (r *Registry) roomLocked(gameID model.GameID) *room {
	rm, ok := r.rooms[gameID]
	if !ok {
		rm = newRoom()
		r.rooms[gameID] = rm
	}
	return rm
}
