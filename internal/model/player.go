package model

import "time"

// User is a durable identity owned by the catalog. The core only ever
// references it by id.
type User struct {
	ID          UserID
	DisplayName string
	CreatedAt   time.Time
}

// Player is a user's seat in one game. It persists independently of any
// connection or session; claims over it come and go with connections.
type Player struct {
	ID        PlayerID
	GameID    GameID
	UserID    UserID
	Name      string
	CreatedAt time.Time
}
