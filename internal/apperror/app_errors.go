package apperror

import "errors"

var (
	ErrOutOfBounds     = errors.New("cell is out of bounds")
	ErrIllegalMove     = errors.New("move is not legal")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrAlreadyFull     = errors.New("match already has two participants")
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchClosed     = errors.New("match is already completed")
	ErrMatchNotStarted = errors.New("match is not started")
	ErrNotParticipant  = errors.New("player is not part of this match")
	ErrNoLegalMoves    = errors.New("no legal moves available")
	ErrUnknownGameType = errors.New("unknown game type")
)
