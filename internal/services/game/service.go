package game

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/jfmyers/gamelobby-go/internal/dependencies/clock"
	"github.com/jfmyers/gamelobby-go/internal/dependencies/random"
	"github.com/jfmyers/gamelobby-go/internal/model"
	"github.com/jfmyers/gamelobby-go/internal/storage"
)

const (
	// GameCodeLength is the length of generated game codes
	GameCodeLength = 6
	// GameCodeAlphabet is the characters used in game codes
	GameCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Service manages the durable game and player records in the catalog
type Service struct {
	catalog storage.Catalog
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewService creates a new game service
func NewService(catalog storage.Catalog, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		catalog: catalog,
		clock:   clk,
		random:  rnd,
		logger:  logger.With(slog.String("component", "game")),
	}
}

// CreateUser creates a user record in the catalog
func (s *Service) CreateUser(ctx context.Context, displayName string) (*model.User, error) {
	user := &model.User{
		ID:          model.UserID("u_" + ulid.Make().String()),
		DisplayName: displayName,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.catalog.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", slog.String("user_id", string(user.ID)))
	return user, nil
}

// CreateGame creates a new game with a fresh room code
func (s *Service) CreateGame(ctx context.Context) (*model.Game, error) {
	var id model.GameID
	for {
		id = model.GameID(s.random.String(GameCodeLength, GameCodeAlphabet))
		exists, err := s.catalog.GameExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	game := &model.Game{
		ID:        id,
		Status:    model.GameStatusWaiting,
		CreatedAt: s.clock.Now(),
	}

	if err := s.catalog.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	s.logger.Info("game created", slog.String("game_id", string(id)))
	return game, nil
}

// GetGameInfo returns a game and its players in catalog order
func (s *Service) GetGameInfo(ctx context.Context, gameID model.GameID) (*model.Game, []*model.Player, error) {
	game, err := s.catalog.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}

	players, err := s.catalog.ListPlayers(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}

	return game, players, nil
}

// AddPlayer creates a player seat in a game for a user. If name is empty
// the user's display name is used.
func (s *Service) AddPlayer(ctx context.Context, gameID model.GameID, userID model.UserID, name string) (*model.Player, error) {
	if _, err := s.catalog.GetGame(ctx, gameID); err != nil {
		return nil, err
	}

	user, err := s.catalog.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = user.DisplayName
	}

	player := &model.Player{
		ID:        model.PlayerID("p_" + ulid.Make().String()),
		GameID:    gameID,
		UserID:    userID,
		Name:      name,
		CreatedAt: s.clock.Now(),
	}

	if err := s.catalog.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player added",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(player.ID)),
		slog.String("user_id", string(userID)))
	return player, nil
}

// RenamePlayer changes a player's display name. The player must belong
// to the given game.
func (s *Service) RenamePlayer(ctx context.Context, gameID model.GameID, playerID model.PlayerID, name string) (*model.Player, error) {
	player, err := s.catalog.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player.GameID != gameID {
		return nil, model.ErrPlayerNotFound
	}

	if err := s.catalog.RenamePlayer(ctx, playerID, name); err != nil {
		return nil, err
	}

	player.Name = name
	return player, nil
}
