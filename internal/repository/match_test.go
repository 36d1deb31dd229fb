package repository

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/ugolki-backend/internal/entity"
	"github.com/rocketscienceinc/ugolki-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRepository_Save(t *testing.T) {
	ctx, st := suite.New(t)

	matchRepo := NewMatchRepository(st.Storage)

	// Given: a completed match snapshot
	completedAt := time.Now().UTC().Truncate(time.Second)
	state := &entity.MatchState{
		MatchID:       "1234",
		Board:         entity.NewBoard(),
		Status:        entity.StatusCompleted,
		GameType:      entity.TypePeer,
		MoveCount:     42,
		WhitePlayerID: "alice",
		BlackPlayerID: "bob",
		Winner:        "white",
		WinnerID:      "alice",
		RatingDeltas:  map[string]float64{"alice": 16, "bob": -16},
		CompletedAt:   &completedAt,
	}

	// When: Save is called
	err := matchRepo.Save(ctx, state)

	// Then: no error should be returned
	require.NoError(t, err)
}

func TestMatchRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// Given: a saved match snapshot
		state := &entity.MatchState{
			MatchID:       "1234",
			Board:         entity.NewBoard(),
			Status:        entity.StatusCompleted,
			GameType:      entity.TypeAutomated,
			WhitePlayerID: "alice",
			BlackPlayerID: entity.BotID("1234"),
			Winner:        "black",
		}
		require.NoError(t, matchRepo.Save(ctx, state))

		// When: GetByID is called with existing ID
		retrieved, err := matchRepo.GetByID(ctx, "1234")

		// Then: the snapshot round trips
		require.NoError(t, err)
		assert.Equal(t, state.MatchID, retrieved.MatchID)
		assert.Equal(t, state.Board, retrieved.Board)
		assert.Equal(t, state.Winner, retrieved.Winner)
		assert.Equal(t, state.BlackPlayerID, retrieved.BlackPlayerID)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// When: GetByID is called with non-existent ID
		retrieved, err := matchRepo.GetByID(ctx, "9999999")

		// Then: an ErrMatchRecordNotFound error should be returned
		require.Error(t, err)
		assert.Equal(t, ErrMatchRecordNotFound, err)
		assert.Nil(t, retrieved)
	})
}
