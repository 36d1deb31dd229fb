package service

import (
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/ugolki-backend/internal/apperror"
	"github.com/rocketscienceinc/ugolki-backend/internal/entity"
)

type legalMover interface {
	LegalMoves(board *entity.Board, side entity.Side) []entity.Move
}

// randomAgent - selects uniformly at random among the legal moves. Smarter
// strategies implement the same entity.Agent contract.
type randomAgent struct {
	rules legalMover
}

func NewRandomAgent(rules legalMover) entity.Agent {
	return &randomAgent{rules: rules}
}

func (that *randomAgent) ChooseMove(board *entity.Board, side entity.Side) (entity.Move, error) {
	moves := that.rules.LegalMoves(board, side)
	if len(moves) == 0 {
		return entity.Move{}, fmt.Errorf("%w: side %s", apperror.ErrNoLegalMoves, side)
	}

	return moves[rand.Intn(len(moves))], nil //nolint: gosec // it's ok
}
