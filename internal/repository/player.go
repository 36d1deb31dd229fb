package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/ugolki-backend/internal/entity"
)

var ErrPlayerNotFound = errors.New("player not found")

// ratingsKey - sorted set mirroring every player's rating, used for the
// leaderboard ordering.
const ratingsKey = "ratings"

type PlayerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	GetOrCreate(ctx context.Context, id, username string) (*entity.Player, error)
	Leaderboard(ctx context.Context, limit int64) ([]*entity.Player, error)
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

func (that *dbPlayer) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	playerJSON, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	playerKey := "player:" + player.ID
	if err = that.client.Set(ctx, playerKey, playerJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	err = that.client.ZAdd(ctx, ratingsKey, redis.Z{Score: player.Rating, Member: player.ID}).Err()
	if err != nil {
		return fmt.Errorf("failed to update rating index: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	playerKey := "player:" + id

	response, err := that.client.Get(ctx, playerKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrPlayerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by ID: %w", err)
	}

	var existingPlayer entity.Player
	if err = json.Unmarshal([]byte(response), &existingPlayer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &existingPlayer, nil
}

// GetOrCreate - returns the stored player or bootstraps a new one at the
// default rating.
func (that *dbPlayer) GetOrCreate(ctx context.Context, id, username string) (*entity.Player, error) {
	player, err := that.GetByID(ctx, id)
	if err == nil {
		return player, nil
	}

	if !errors.Is(err, ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	player = entity.NewPlayer(id, username)
	if err = that.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

// Leaderboard - players ordered by rating descending.
func (that *dbPlayer) Leaderboard(ctx context.Context, limit int64) ([]*entity.Player, error) {
	entries, err := that.client.ZRevRangeWithScores(ctx, ratingsKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read rating index: %w", err)
	}

	players := make([]*entity.Player, 0, len(entries))
	for _, entry := range entries {
		id, ok := entry.Member.(string)
		if !ok {
			continue
		}

		player, err := that.GetByID(ctx, id)
		if errors.Is(err, ErrPlayerNotFound) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to get player %s: %w", id, err)
		}

		players = append(players, player)
	}

	return players, nil
}
