package claim

import (
	"context"
	"log/slog"

	"github.com/jfmyers/gamelobby-go/internal/model"
	"github.com/jfmyers/gamelobby-go/internal/services/registry"
	"github.com/jfmyers/gamelobby-go/internal/storage"
)

// Resolver decides which player a session controls in a game, reconciling
// live registry state with the catalog's durable player list.
type Resolver struct {
	registry *registry.Registry
	catalog  storage.Catalog
	logger   *slog.Logger
}

// NewResolver creates a new Resolver
func NewResolver(reg *registry.Registry, catalog storage.Catalog, logger *slog.Logger) *Resolver {
	return &Resolver{
		registry: reg,
		catalog:  catalog,
		logger:   logger.With(slog.String("component", "claim-resolver")),
	}
}

// Resolve returns the player the session currently controls in the game.
//
// A session that already holds a claim gets the same player back (session
// affinity across repeated requests). Otherwise the user's own players are
// scanned in catalog order and the first one nobody is claiming is chosen,
// which is how a user who dropped and reconnected with a fresh session
// recovers the seat they occupied. Resolve never mutates registry state;
// recording the claim is the caller's decision.
func (r *Resolver) Resolve(ctx context.Context, gameID model.GameID, sessionID model.SessionID) (*model.Player, error) {
	userID, ok := r.registry.UserOf(sessionID)
	if !ok {
		return nil, model.ErrNoUserForSession
	}

	activeClaims := r.registry.ClaimsInRoom(gameID)

	// Direct hit: the session already controls a player
	for playerID, claimingSession := range activeClaims {
		if claimingSession == sessionID {
			return r.catalog.GetPlayer(ctx, playerID)
		}
	}

	// Reconnection fallback: first of the user's own players that nobody
	// is currently claiming, in catalog listing order
	players, err := r.catalog.ListPlayers(ctx, gameID)
	if err != nil {
		return nil, err
	}

	owned := 0
	for _, player := range players {
		if player.UserID != userID {
			continue
		}
		owned++
		if _, claimed := activeClaims[player.ID]; !claimed {
			r.logger.Debug("resolved claim via ownership fallback",
				slog.String("game_id", string(gameID)),
				slog.String("player_id", string(player.ID)))
			return player, nil
		}
	}

	if owned == 0 {
		return nil, model.ErrNoPlayersForUser
	}
	return nil, model.ErrNoAvailablePlayer
}
