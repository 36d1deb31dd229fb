package entity

import (
	"encoding/json"
	"testing"

	"github.com/rocketscienceinc/ugolki-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	t.Run("Seeds both starting corners", func(t *testing.T) {
		// Given: a fresh board
		board := NewBoard()

		// When: counting the pieces on each side
		white, black, empty := 0, 0, 0
		for row := 0; row < BoardSize; row++ {
			for col := 0; col < BoardSize; col++ {
				switch board[row][col] {
				case SideWhite:
					white++
				case SideBlack:
					black++
				default:
					empty++
				}
			}
		}

		// Then: each side has 16 pieces and the rest of the grid is empty
		assert.Equal(t, PiecesPerSide, white)
		assert.Equal(t, PiecesPerSide, black)
		assert.Equal(t, BoardSize*BoardSize-2*PiecesPerSide, empty)
	})

	t.Run("Places white top-left and black bottom-right", func(t *testing.T) {
		// Given: a fresh board
		board := NewBoard()

		// Then: corner extremes hold the expected sides
		assert.Equal(t, SideWhite, board[0][0])
		assert.Equal(t, SideWhite, board[3][3])
		assert.Equal(t, SideBlack, board[7][7])
		assert.Equal(t, SideBlack, board[4][4])
		assert.Equal(t, SideNone, board[0][4])
		assert.Equal(t, SideNone, board[4][0])
	})
}

func TestBoard_PieceAt(t *testing.T) {
	t.Run("Returns the occupant of a cell", func(t *testing.T) {
		// Given: the starting position
		board := NewBoard()

		// When: reading an occupied and an empty cell
		white, err := board.PieceAt(Cell{Row: 0, Col: 0})
		require.NoError(t, err)

		none, err := board.PieceAt(Cell{Row: 4, Col: 0})
		require.NoError(t, err)

		// Then: the occupants match the layout
		assert.Equal(t, SideWhite, white)
		assert.Equal(t, SideNone, none)
	})

	t.Run("Returns ErrOutOfBounds for a cell off the grid", func(t *testing.T) {
		// Given: the starting position
		board := NewBoard()

		// When: reading a cell outside the grid
		_, err := board.PieceAt(Cell{Row: 8, Col: 0})

		// Then: it should return ErrOutOfBounds
		assert.ErrorIs(t, err, apperror.ErrOutOfBounds)
	})
}

func TestBoard_Apply(t *testing.T) {
	t.Run("Moves a piece from origin to destination", func(t *testing.T) {
		// Given: the starting position
		board := NewBoard()

		// When: applying a step off the corner edge
		board.Apply(Move{From: Cell{Row: 0, Col: 3}, To: Cell{Row: 0, Col: 4}})

		// Then: the origin is empty and the destination holds the piece
		assert.Equal(t, SideNone, board[0][3])
		assert.Equal(t, SideWhite, board[0][4])
	})
}

func TestBoard_Winner(t *testing.T) {
	t.Run("Returns SideNone for the starting position", func(t *testing.T) {
		// Given: the starting position
		board := NewBoard()

		// Then: nobody has won and the position is not terminal
		assert.Equal(t, SideNone, board.Winner())
		assert.False(t, board.IsTerminal())
	})

	t.Run("Returns SideWhite when white fills the opposing corner", func(t *testing.T) {
		// Given: all 16 white pieces sitting in the bottom-right corner
		var board Board
		for row := 4; row < BoardSize; row++ {
			for col := 4; col < BoardSize; col++ {
				board[row][col] = SideWhite
			}
		}

		// Then: white wins
		assert.Equal(t, SideWhite, board.Winner())
		assert.True(t, board.IsTerminal())
	})

	t.Run("Returns SideBlack when black fills the opposing corner", func(t *testing.T) {
		// Given: all 16 black pieces sitting in the top-left corner
		var board Board
		for row := 0; row < CornerSize; row++ {
			for col := 0; col < CornerSize; col++ {
				board[row][col] = SideBlack
			}
		}

		// Then: black wins
		assert.Equal(t, SideBlack, board.Winner())
	})

	t.Run("Returns SideNone when a corner is only partly filled", func(t *testing.T) {
		// Given: 15 white pieces in the target corner
		var board Board
		for row := 4; row < BoardSize; row++ {
			for col := 4; col < BoardSize; col++ {
				board[row][col] = SideWhite
			}
		}
		board[7][7] = SideNone

		// Then: the position is not terminal
		assert.Equal(t, SideNone, board.Winner())
	})
}

func TestSide_Opponent(t *testing.T) {
	t.Run("Opponent flips between the two sides", func(t *testing.T) {
		assert.Equal(t, SideBlack, SideWhite.Opponent())
		assert.Equal(t, SideWhite, SideBlack.Opponent())
		assert.Equal(t, SideNone, SideNone.Opponent())
	})
}

func TestCell_JSON(t *testing.T) {
	t.Run("Serializes as a two-element array", func(t *testing.T) {
		// Given: a cell
		cell := Cell{Row: 2, Col: 5}

		// When: marshaling it
		data, err := json.Marshal(cell)
		require.NoError(t, err)

		// Then: the wire form is [row, col]
		assert.JSONEq(t, `[2,5]`, string(data))
	})

	t.Run("Parses a two-element array into a cell", func(t *testing.T) {
		// Given: the wire form of a move
		data := []byte(`{"from":[0,3],"to":[0,4]}`)

		// When: unmarshaling it
		var move Move
		require.NoError(t, json.Unmarshal(data, &move))

		// Then: both cells carry the coordinates
		assert.Equal(t, Cell{Row: 0, Col: 3}, move.From)
		assert.Equal(t, Cell{Row: 0, Col: 4}, move.To)
	})
}
