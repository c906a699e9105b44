package storage

import (
	"context"

	"github.com/jfmyers/gamelobby-go/internal/model"
)

// Catalog defines the interface to the durable store for users, games and
// players. The connection registry deliberately lives outside of it:
// registry state is process-local and dies with the process.
type Catalog interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	GameExists(ctx context.Context, id model.GameID) (bool, error)

	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// ListPlayers returns all players of a game ordered by creation time
	// ascending, ties broken by player id. Claim resolution depends on
	// this order being stable across calls.
	ListPlayers(ctx context.Context, gameID model.GameID) ([]*model.Player, error)
	RenamePlayer(ctx context.Context, id model.PlayerID, name string) error
}
