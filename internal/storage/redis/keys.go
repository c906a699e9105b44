package redis

import (
	"fmt"

	"github.com/jfmyers/gamelobby-go/internal/model"
)

// Key prefix for all lobby-related data
const keyPrefix = "gamelobby"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playersForGameIndexKey returns the Redis key for the sorted set of
// players in a game, scored by creation time
func playersForGameIndexKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:players_for_game:%s", keyPrefix, gameID)
}
