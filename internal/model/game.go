package model

import "time"

// GameStatus represents the lifecycle state of a game
type GameStatus string

const (
	GameStatusWaiting    GameStatus = "waiting"
	GameStatusInProgress GameStatus = "in-progress"
	GameStatusCompleted  GameStatus = "completed"
)

// Game is the durable record for one game room
type Game struct {
	ID        GameID
	Status    GameStatus
	CreatedAt time.Time
}
