package service

import (
	"testing"

	"github.com/rocketscienceinc/ugolki-backend/internal/apperror"
	"github.com/rocketscienceinc/ugolki-backend/internal/entity"
	"github.com/rocketscienceinc/ugolki-backend/internal/ugolki"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stuckRules - a rules engine that never offers a move.
type stuckRules struct{}

func (that *stuckRules) LegalMoves(_ *entity.Board, _ entity.Side) []entity.Move {
	return nil
}

func TestRandomAgent_ChooseMove(t *testing.T) {
	t.Run("Picks a legal move from the starting position", func(t *testing.T) {
		// Given: the real rules engine and the starting position
		agent := NewRandomAgent(ugolki.NewEngine())
		board := entity.NewBoard()

		// When: the agent chooses a move for black
		move, err := agent.ChooseMove(&board, entity.SideBlack)
		require.NoError(t, err)

		// Then: the chosen move starts from a black piece
		piece, err := board.PieceAt(move.From)
		require.NoError(t, err)
		assert.Equal(t, entity.SideBlack, piece)

		target, err := board.PieceAt(move.To)
		require.NoError(t, err)
		assert.Equal(t, entity.SideNone, target)
	})

	t.Run("Every pick stays within the legal move set", func(t *testing.T) {
		// Given: the legal moves for white in the starting position
		engine := ugolki.NewEngine()
		agent := NewRandomAgent(engine)
		board := entity.NewBoard()
		legal := engine.LegalMoves(&board, entity.SideWhite)

		// When: the agent chooses repeatedly
		for i := 0; i < 50; i++ {
			move, err := agent.ChooseMove(&board, entity.SideWhite)
			require.NoError(t, err)

			// Then: each pick is one of the legal moves
			assert.Contains(t, legal, move)
		}
	})

	t.Run("Returns ErrNoLegalMoves when the side is stuck", func(t *testing.T) {
		// Given: a rules engine yielding no moves
		agent := NewRandomAgent(&stuckRules{})
		board := entity.NewBoard()

		// When: the agent is asked to move
		_, err := agent.ChooseMove(&board, entity.SideWhite)

		// Then: it should return ErrNoLegalMoves
		assert.ErrorIs(t, err, apperror.ErrNoLegalMoves)
	})
}
