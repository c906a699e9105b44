package response

import (
	"time"

	"github.com/jfmyers/gamelobby-go/internal/model"
)

// User represents a user in API responses
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:          string(u.ID),
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// Player represents a player in API responses
type Player struct {
	ID        string    `json:"id"`
	GameID    string    `json:"gameId"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:        string(p.ID),
		GameID:    string(p.GameID),
		UserID:    string(p.UserID),
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}

// Game represents a game in API responses
type Game struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// GameFromModel converts a model.Game to a response Game
func GameFromModel(g *model.Game) Game {
	return Game{
		ID:        string(g.ID),
		Status:    string(g.Status),
		CreatedAt: g.CreatedAt,
	}
}

// GameInfo is the response for the game info endpoint: the game plus its
// player roster in catalog order
type GameInfo struct {
	Game    Game     `json:"game"`
	Players []Player `json:"players"`
}

// GameInfoFromModel converts a game and its players
func GameInfoFromModel(g *model.Game, players []*model.Player) GameInfo {
	resp := GameInfo{
		Game:    GameFromModel(g),
		Players: make([]Player, len(players)),
	}
	for i, p := range players {
		resp.Players[i] = PlayerFromModel(p)
	}
	return resp
}

// ClaimResponse is the response for a resolved claim
type ClaimResponse struct {
	Player Player `json:"player"`
}
