package model

// GameID identifies a game. It doubles as the room name for all
// connection-scoped state: every websocket connection, registry entry and
// broadcast group is namespaced by one GameID.
type GameID string

// UserID identifies a durable user account.
type UserID string

// PlayerID identifies a player (a user's seat in one game).
type PlayerID string

// SessionID is the opaque token a client holds across reconnects.
// It is chosen client-side and never persisted server-side.
type SessionID string

// ConnectionID identifies one live websocket connection. Assigned at
// upgrade time, gone when the socket closes.
type ConnectionID string
