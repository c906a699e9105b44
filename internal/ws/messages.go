package ws

// Inbound message types understood by a connection
const (
	// TypeSessionUser binds the client's session token and user id to
	// this connection
	TypeSessionUser = "sessionUser"
	// TypeSessionPlayer asserts the player the session controls,
	// typically sent right after an add/claim HTTP call succeeded
	TypeSessionPlayer = "sessionPlayer"
	// TypeClientMessage is a chat message relayed to the room
	TypeClientMessage = "clientMessage"
)

// inboundMessage is the envelope for every client -> server frame
type inboundMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	PlayerID  string `json:"playerId,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ackMessage is the direct reply sent back on the same connection after
// a successful bind. It races independently with room broadcasts.
type ackMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
	PlayerID  string `json:"playerId,omitempty"`
}
