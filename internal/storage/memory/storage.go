package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jfmyers/gamelobby-go/internal/model"
	"github.com/jfmyers/gamelobby-go/internal/storage"
)

// Catalog is an in-memory implementation of the catalog interface
type Catalog struct {
	mu sync.RWMutex

	users   map[model.UserID]*model.User
	games   map[model.GameID]*model.Game
	players map[model.PlayerID]*model.Player
	// gameID -> player ids, insertion order preserved
	gamePlayers map[model.GameID][]model.PlayerID
}

// New creates a new in-memory catalog instance
func New() *Catalog {
	return &Catalog{
		users:       make(map[model.UserID]*model.User),
		games:       make(map[model.GameID]*model.Game),
		players:     make(map[model.PlayerID]*model.Player),
		gamePlayers: make(map[model.GameID][]model.PlayerID),
	}
}

// Ensure Catalog implements the interface
var _ storage.Catalog = (*Catalog)(nil)

// User operations

func (s *Catalog) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *Catalog) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// Game operations

func (s *Catalog) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game
	return nil
}

func (s *Catalog) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

func (s *Catalog) GameExists(ctx context.Context, id model.GameID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.games[id]
	return ok, nil
}

// Player operations

func (s *Catalog) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.ID]; !ok {
		s.gamePlayers[player.GameID] = append(s.gamePlayers[player.GameID], player.ID)
	}
	s.players[player.ID] = player
	return nil
}

func (s *Catalog) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Catalog) ListPlayers(ctx context.Context, gameID model.GameID) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.gamePlayers[gameID]
	players := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.players[id]; ok {
			players = append(players, p)
		}
	}
	// Canonical catalog order: creation time, then id
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].CreatedAt.Equal(players[j].CreatedAt) {
			return players[i].ID < players[j].ID
		}
		return players[i].CreatedAt.Before(players[j].CreatedAt)
	})
	return players, nil
}

func (s *Catalog) RenamePlayer(ctx context.Context, id model.PlayerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	player.Name = name
	return nil
}
