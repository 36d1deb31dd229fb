package ugolki

import (
	"fmt"

	"github.com/rocketscienceinc/ugolki-backend/internal/apperror"
	"github.com/rocketscienceinc/ugolki-backend/internal/entity"
)

// directions - the four orthogonal deltas. Diagonal moves are never legal.
var directions = [4][2]int{
	{-1, 0}, // north
	{0, 1},  // east
	{1, 0},  // south
	{0, -1}, // west
}

// Engine - the Ugolki rules engine. Stateless; all methods operate on the
// board they are given.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// LegalMoves - produces the complete set of legal moves for a side: for every
// piece, the in-bounds empty orthogonal single-step destinations plus every
// cell reachable through a chain of jumps. A chain may stop at any reached
// cell, so each reached cell is its own legal destination.
func (that *Engine) LegalMoves(board *entity.Board, side entity.Side) []entity.Move {
	var moves []entity.Move

	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			if board[row][col] != side {
				continue
			}

			from := entity.Cell{Row: row, Col: col}

			for _, dir := range directions {
				to := entity.Cell{Row: row + dir[0], Col: col + dir[1]}
				if board.InBounds(to) && board[to.Row][to.Col] == entity.SideNone {
					moves = append(moves, entity.Move{From: from, To: to})
				}
			}

			for _, to := range that.jumpDestinations(board, from) {
				moves = append(moves, entity.Move{From: from, To: to})
			}
		}
	}

	return moves
}

// jumpDestinations - breadth-first traversal over the cells reachable by
// chained jumps from one origin. A jump hops over an adjacent occupied cell
// (either side's piece) onto the empty cell directly beyond it. The visited
// set includes the origin itself, so cycles terminate.
func (that *Engine) jumpDestinations(board *entity.Board, from entity.Cell) []entity.Cell {
	var reachable []entity.Cell

	visited := map[entity.Cell]struct{}{from: {}}
	queue := []entity.Cell{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range directions {
			over := entity.Cell{Row: current.Row + dir[0], Col: current.Col + dir[1]}
			land := entity.Cell{Row: current.Row + 2*dir[0], Col: current.Col + 2*dir[1]}

			if !board.InBounds(land) {
				continue
			}

			if board[over.Row][over.Col] == entity.SideNone {
				continue
			}

			if board[land.Row][land.Col] != entity.SideNone {
				continue
			}

			if _, seen := visited[land]; seen {
				continue
			}

			visited[land] = struct{}{}
			reachable = append(reachable, land)
			queue = append(queue, land)
		}
	}

	return reachable
}

// HasLegalMoves - reports whether the side can move at all.
func (that *Engine) HasLegalMoves(board *entity.Board, side entity.Side) bool {
	return len(that.LegalMoves(board, side)) > 0
}

// Validate - checks that the move's origin holds the side's piece, the
// destination is an in-bounds empty cell, and the destination is reachable
// from the origin in the current position.
func (that *Engine) Validate(board *entity.Board, side entity.Side, move entity.Move) error {
	occupant, err := board.PieceAt(move.From)
	if err != nil {
		return fmt.Errorf("origin: %w", err)
	}

	if occupant != side {
		return fmt.Errorf("%w: no %s piece at row %d col %d", apperror.ErrIllegalMove, side, move.From.Row, move.From.Col)
	}

	target, err := board.PieceAt(move.To)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	if target != entity.SideNone {
		return fmt.Errorf("%w: destination row %d col %d is occupied", apperror.ErrIllegalMove, move.To.Row, move.To.Col)
	}

	for _, legal := range that.LegalMoves(board, side) {
		if legal.From == move.From && legal.To == move.To {
			return nil
		}
	}

	return fmt.Errorf("%w: row %d col %d is not reachable from row %d col %d",
		apperror.ErrIllegalMove, move.To.Row, move.To.Col, move.From.Row, move.From.Col)
}

// Winner - returns the winning side or SideNone.
func (that *Engine) Winner(board *entity.Board) entity.Side {
	return board.Winner()
}
