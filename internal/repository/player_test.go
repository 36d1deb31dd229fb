package repository

import (
	"testing"

	"github.com/rocketscienceinc/ugolki-backend/internal/entity"
	"github.com/rocketscienceinc/ugolki-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// Given: a player
	player := entity.NewPlayer("123", "alice")

	// When: CreateOrUpdate is called
	err := playerRepo.CreateOrUpdate(ctx, player)

	// Then: no error should be returned, and player is stored
	require.NoError(t, err)
}

func TestPlayerRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: a stored player
		player := entity.NewPlayer("123", "alice")

		err := playerRepo.CreateOrUpdate(ctx, player)
		require.NoError(t, err)

		// When: GetByID is called with existing ID
		retrievedPlayer, err := playerRepo.GetByID(ctx, player.ID)

		// Then: the retrieved player should match the saved player
		require.NoError(t, err)
		require.Equal(t, player.ID, retrievedPlayer.ID)
		require.Equal(t, player.Username, retrievedPlayer.Username)
		require.Equal(t, entity.DefaultRating, retrievedPlayer.Rating)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		nonExistentPlayerID := "9999999"

		// When: GetByID is called with non-existent ID
		retrievedPlayer, err := playerRepo.GetByID(ctx, nonExistentPlayerID)

		// Then: an ErrPlayerNotFound error should be returned
		require.Error(t, err)
		assert.Equal(t, ErrPlayerNotFound, err)
		assert.Nil(t, retrievedPlayer)
	})
}

func TestPlayerRepository_GetOrCreate(t *testing.T) {
	t.Run("Creates a player at the default rating", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// When: GetOrCreate is called for an unknown ID
		player, err := playerRepo.GetOrCreate(ctx, "123", "alice")

		// Then: a fresh player exists at the default rating
		require.NoError(t, err)
		assert.Equal(t, "123", player.ID)
		assert.Equal(t, "alice", player.Username)
		assert.Equal(t, entity.DefaultRating, player.Rating)
	})

	t.Run("Returns the stored player unchanged", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: a stored player with a custom rating
		stored := entity.NewPlayer("123", "alice")
		stored.Rating = 1400
		require.NoError(t, playerRepo.CreateOrUpdate(ctx, stored))

		// When: GetOrCreate is called with the same ID and a new username
		player, err := playerRepo.GetOrCreate(ctx, "123", "someone-else")

		// Then: the stored player wins
		require.NoError(t, err)
		assert.Equal(t, "alice", player.Username)
		assert.Equal(t, 1400.0, player.Rating)
	})
}

func TestPlayerRepository_Leaderboard(t *testing.T) {
	t.Run("Orders players by rating descending", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: three players with distinct ratings
		for _, seed := range []struct {
			id     string
			rating float64
		}{
			{id: "low", rating: 1100},
			{id: "high", rating: 1500},
			{id: "mid", rating: 1300},
		} {
			player := entity.NewPlayer(seed.id, seed.id)
			player.Rating = seed.rating
			require.NoError(t, playerRepo.CreateOrUpdate(ctx, player))
		}

		// When: reading the leaderboard
		players, err := playerRepo.Leaderboard(ctx, 10)

		// Then: players come back best first
		require.NoError(t, err)
		require.Len(t, players, 3)
		assert.Equal(t, "high", players[0].ID)
		assert.Equal(t, "mid", players[1].ID)
		assert.Equal(t, "low", players[2].ID)
	})

	t.Run("Respects the limit", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: three stored players
		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, playerRepo.CreateOrUpdate(ctx, entity.NewPlayer(id, id)))
		}

		// When: asking for the top two
		players, err := playerRepo.Leaderboard(ctx, 2)

		// Then: only two entries come back
		require.NoError(t, err)
		assert.Len(t, players, 2)
	})

	t.Run("Rating updates move a player up", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: two players at the default rating
		alice := entity.NewPlayer("alice", "alice")
		bob := entity.NewPlayer("bob", "bob")
		require.NoError(t, playerRepo.CreateOrUpdate(ctx, alice))
		require.NoError(t, playerRepo.CreateOrUpdate(ctx, bob))

		// When: bob's rating rises
		bob.Rating = 1400
		require.NoError(t, playerRepo.CreateOrUpdate(ctx, bob))

		// Then: bob leads the board
		players, err := playerRepo.Leaderboard(ctx, 10)
		require.NoError(t, err)
		require.NotEmpty(t, players)
		assert.Equal(t, "bob", players[0].ID)
	})
}
