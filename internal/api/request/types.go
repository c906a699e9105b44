package request

// CreateUserRequest is the request body for creating a user
type CreateUserRequest struct {
	DisplayName string `json:"displayName"`
}

// AddPlayerRequest is the optional request body for adding a player.
// An empty name falls back to the user's display name.
type AddPlayerRequest struct {
	Name string `json:"name,omitempty"`
}

// ClaimRequest is the request body for resolving a session's player claim
type ClaimRequest struct {
	SessionID string `json:"sessionId"`
}

// NamePlayerRequest is the request body for renaming a player
type NamePlayerRequest struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}
