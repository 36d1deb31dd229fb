package entity

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/ugolki-backend/internal/apperror"
)

const (
	// BoardSize - the board is a fixed 8x8 grid.
	BoardSize = 8

	// CornerSize - each side starts in a 4x4 corner.
	CornerSize = 4

	// PiecesPerSide - a full corner holds 16 pieces.
	PiecesPerSide = CornerSize * CornerSize
)

// Side - one of the two competing sides, or none.
// The zero value doubles as the empty cell marker on the wire.
type Side int8

const (
	SideNone  Side = 0
	SideWhite Side = 1
	SideBlack Side = 2
)

func (that Side) String() string {
	switch that {
	case SideWhite:
		return "white"
	case SideBlack:
		return "black"
	default:
		return ""
	}
}

func (that Side) Opponent() Side {
	switch that {
	case SideWhite:
		return SideBlack
	case SideBlack:
		return SideWhite
	default:
		return SideNone
	}
}

// Cell - a board position. Serialized as a [row, col] pair.
type Cell struct {
	Row int
	Col int
}

func (that Cell) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal([2]int{that.Row, that.Col})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cell: %w", err)
	}

	return data, nil
}

func (that *Cell) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("failed to unmarshal cell: %w", err)
	}

	that.Row = pair[0]
	that.Col = pair[1]

	return nil
}

// Move - an origin cell and a final destination cell. A move is either a
// single orthogonal step or the endpoint of a chain of jumps; intermediate
// hops are not recorded.
type Move struct {
	From Cell `json:"from"`
	To   Cell `json:"to"`
}

// Board - an 8x8 grid in row-major order. Mutated only by applying a move
// that the rules engine has already validated.
type Board [BoardSize][BoardSize]Side

// NewBoard - produces the starting layout: 16 white pieces in the top-left
// corner and 16 black pieces in the bottom-right corner.
func NewBoard() Board {
	var board Board

	for row := 0; row < CornerSize; row++ {
		for col := 0; col < CornerSize; col++ {
			board[row][col] = SideWhite
			board[BoardSize-1-row][BoardSize-1-col] = SideBlack
		}
	}

	return board
}

// InBounds - reports whether the cell lies on the grid.
func (that *Board) InBounds(cell Cell) bool {
	return cell.Row >= 0 && cell.Row < BoardSize && cell.Col >= 0 && cell.Col < BoardSize
}

// PieceAt - returns the occupant of a cell or SideNone if it is empty.
func (that *Board) PieceAt(cell Cell) (Side, error) {
	if !that.InBounds(cell) {
		return SideNone, fmt.Errorf("%w: row %d col %d", apperror.ErrOutOfBounds, cell.Row, cell.Col)
	}

	return that[cell.Row][cell.Col], nil
}

// Apply - clears the origin and occupies the destination with the moving
// side's piece. Assumes the move was already validated.
func (that *Board) Apply(move Move) {
	that[move.To.Row][move.To.Col] = that[move.From.Row][move.From.Col]
	that[move.From.Row][move.From.Col] = SideNone
}

// Winner - returns the side whose 16 pieces fully occupy the opposing
// starting corner, or SideNone. White is the earlier-moving side, so its
// win is reported first in the impossible case that both corners filled
// in the same position.
func (that *Board) Winner() Side {
	whiteInBlackCorner := 0
	blackInWhiteCorner := 0

	for row := 0; row < CornerSize; row++ {
		for col := 0; col < CornerSize; col++ {
			if that[BoardSize-1-row][BoardSize-1-col] == SideWhite {
				whiteInBlackCorner++
			}
			if that[row][col] == SideBlack {
				blackInWhiteCorner++
			}
		}
	}

	if whiteInBlackCorner == PiecesPerSide {
		return SideWhite
	}

	if blackInWhiteCorner == PiecesPerSide {
		return SideBlack
	}

	return SideNone
}

// IsTerminal - reports whether one side has filled the opposing corner.
func (that *Board) IsTerminal() bool {
	return that.Winner() != SideNone
}
