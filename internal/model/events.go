package model

// EventType identifies a room broadcast event
type EventType string

const (
	EventAddPlayer          EventType = "add_player"
	EventNamePlayer         EventType = "name_player"
	EventPlayerDisconnected EventType = "player_disconnected"
	EventChat               EventType = "chat"
)

// Event is the payload fanned out to every connection in a room.
// PlayerID, Name and Message are populated per event type.
type Event struct {
	Type     EventType `json:"type"`
	PlayerID PlayerID  `json:"playerId,omitempty"`
	GameID   GameID    `json:"roomId,omitempty"`
	Name     string    `json:"name,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// NewPlayerAddedEvent announces a newly created player to the room
func NewPlayerAddedEvent(p *Player) Event {
	return Event{Type: EventAddPlayer, PlayerID: p.ID, Name: p.Name}
}

// NewPlayerRenamedEvent announces a player name change to the room
func NewPlayerRenamedEvent(playerID PlayerID, name string) Event {
	return Event{Type: EventNamePlayer, PlayerID: playerID, Name: name}
}

// NewPlayerDisconnectedEvent announces that the connection claiming a
// player has closed
func NewPlayerDisconnectedEvent(playerID PlayerID, gameID GameID) Event {
	return Event{Type: EventPlayerDisconnected, PlayerID: playerID, GameID: gameID}
}

// NewChatEvent relays a client message to the room
func NewChatEvent(message string) Event {
	return Event{Type: EventChat, Message: message}
}
