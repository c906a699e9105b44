package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jfmyers/gamelobby-go/internal/model"
	"github.com/jfmyers/gamelobby-go/internal/storage"
)

// Catalog is a Redis-backed implementation of the catalog interface
type Catalog struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis catalog instance
func New(cfg Config) (*Catalog, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Catalog{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis catalog with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Catalog {
	return &Catalog{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Catalog) Close() error {
	return s.client.Close()
}

// Ensure Catalog implements the interface
var _ storage.Catalog = (*Catalog)(nil)

// User operations

func (s *Catalog) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, userKey(user.ID), data, 0).Err()
}

func (s *Catalog) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Game operations

func (s *Catalog) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, gameKey(game.ID), data, s.cfg.GameTTL).Err()
}

func (s *Catalog) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Catalog) GameExists(ctx context.Context, id model.GameID) (bool, error) {
	exists, err := s.client.Exists(ctx, gameKey(id)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// Player operations

func (s *Catalog) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	indexKey := playersForGameIndexKey(player.GameID)

	// Pipeline the save with the index update. The index is a sorted set
	// scored by creation time so ListPlayers returns catalog order; equal
	// scores fall back to lexicographic member order, which matches the
	// documented id tie-break.
	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(player.ID), data, s.cfg.PlayerTTL)
	pipe.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(player.CreatedAt.UnixNano()),
		Member: string(player.ID),
	})
	if s.cfg.PlayerTTL > 0 {
		pipe.Expire(ctx, indexKey, s.cfg.PlayerTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Catalog) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Catalog) ListPlayers(ctx context.Context, gameID model.GameID) ([]*model.Player, error) {
	indexKey := playersForGameIndexKey(gameID)

	playerIDs, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(playerIDs) == 0 {
		return []*model.Player{}, nil
	}

	keys := make([]string, len(playerIDs))
	for i, id := range playerIDs {
		keys[i] = playerKey(model.PlayerID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Player may have expired
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue // Skip invalid data
		}
		players = append(players, &player)
	}

	return players, nil
}

func (s *Catalog) RenamePlayer(ctx context.Context, id model.PlayerID, name string) error {
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	player.Name = name
	return s.SavePlayer(ctx, player)
}
