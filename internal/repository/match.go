package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/ugolki-backend/internal/entity"
)

var ErrMatchRecordNotFound = errors.New("match record not found")

// MatchRepository - archive of completed matches. Live match state stays in
// memory with the session manager; snapshots land here once a match is over.
type MatchRepository interface {
	Save(ctx context.Context, state *entity.MatchState) error
	GetByID(ctx context.Context, id string) (*entity.MatchState, error)
}

type dbMatch struct {
	client *redis.Client
}

func NewMatchRepository(client *redis.Client) MatchRepository {
	return &dbMatch{
		client: client,
	}
}

func (that *dbMatch) Save(ctx context.Context, state *entity.MatchState) error {
	matchJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}

	matchKey := "match:" + state.MatchID
	if err = that.client.Set(ctx, matchKey, matchJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set match: %w", err)
	}

	return nil
}

func (that *dbMatch) GetByID(ctx context.Context, id string) (*entity.MatchState, error) {
	matchKey := "match:" + id

	response, err := that.client.Get(ctx, matchKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrMatchRecordNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get match by ID: %w", err)
	}

	var state entity.MatchState
	if err = json.Unmarshal([]byte(response), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &state, nil
}
