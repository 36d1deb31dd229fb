package entity

import (
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/ugolki-backend/internal/apperror"
)

const (
	StatusWaiting   = "waiting"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

const (
	// TypeAutomated - the creator plays against the built-in opponent.
	TypeAutomated = "automated"
	// TypePeer - the creator waits for a second human participant.
	TypePeer = "peer"
)

// DefaultMoveLimit - combined plies from both sides after which an active
// match is declared a draw regardless of board state.
const DefaultMoveLimit = 200

// Rules - the capability the match needs from the rules engine.
type Rules interface {
	LegalMoves(board *Board, side Side) []Move
	Validate(board *Board, side Side, move Move) error
	HasLegalMoves(board *Board, side Side) bool
	Winner(board *Board) Side
}

// Agent - the capability an automated opponent must provide. Alternative
// strategies are drop-in implementations of the same contract.
type Agent interface {
	ChooseMove(board *Board, side Side) (Move, error)
}

// Participant - one side's binding inside a match. Connection liveness is
// explicit state updated by session events, not inferred from transport
// failures.
type Participant struct {
	PlayerID  string
	Side      Side
	Connected bool
	IsBot     bool
}

// Match - one game's mutable state. Owned by the session manager for its
// lifetime; every transition goes through the methods below, which serialize
// on the match's own mutex.
type Match struct {
	mu sync.Mutex

	id        string
	matchType string
	status    string
	board     Board
	turn      Side
	moveCount int
	moveLimit int
	winner    Side
	white     *Participant
	black     *Participant

	ratingDeltas map[string]float64

	createdAt   time.Time
	completedAt time.Time

	rules Rules
	agent Agent
}

// NewMatch - allocates a waiting match with the creator bound to the white
// side. White moves first.
func NewMatch(id, matchType, creatorID string, rules Rules, moveLimit int) *Match {
	if moveLimit <= 0 {
		moveLimit = DefaultMoveLimit
	}

	return &Match{
		id:        id,
		matchType: matchType,
		status:    StatusWaiting,
		board:     NewBoard(),
		turn:      SideWhite,
		moveLimit: moveLimit,
		white:     &Participant{PlayerID: creatorID, Side: SideWhite, Connected: true},
		createdAt: time.Now(),
		rules:     rules,
	}
}

func (that *Match) ID() string {
	return that.id
}

func (that *Match) Type() string {
	return that.matchType
}

func (that *Match) Status() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.status
}

// Join - binds a second human participant to the black side and activates
// the match. Valid only while waiting.
func (that *Match) Join(playerID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status != StatusWaiting {
		return fmt.Errorf("%w: match %s is %s", apperror.ErrAlreadyFull, that.id, that.status)
	}

	if that.white.PlayerID == playerID {
		return fmt.Errorf("%w: cannot join your own match", apperror.ErrAlreadyFull)
	}

	that.black = &Participant{PlayerID: playerID, Side: SideBlack, Connected: true}
	that.status = StatusActive

	return nil
}

// JoinBot - binds the automated opponent to the black side and activates the
// match immediately. The agent replies synchronously inside SubmitMove.
func (that *Match) JoinBot(agent Agent, botID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status != StatusWaiting {
		return fmt.Errorf("%w: match %s is %s", apperror.ErrAlreadyFull, that.id, that.status)
	}

	that.black = &Participant{PlayerID: botID, Side: SideBlack, Connected: true, IsBot: true}
	that.agent = agent
	that.status = StatusActive

	return nil
}

// SubmitMove - validates and applies a participant's move, and for automated
// matches applies exactly one reply from the agent under the same lock hold,
// so no second submission can race in between. Returns whether the match
// transitioned to completed. Validation fully precedes mutation: on error the
// match state is untouched.
func (that *Match) SubmitMove(playerID string, move Move) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch that.status {
	case StatusWaiting:
		return false, fmt.Errorf("%w: match %s", apperror.ErrMatchNotStarted, that.id)
	case StatusCompleted:
		return false, fmt.Errorf("%w: match %s", apperror.ErrMatchClosed, that.id)
	}

	participant := that.participantLocked(playerID)
	if participant == nil {
		return false, fmt.Errorf("%w: player %s in match %s", apperror.ErrNotParticipant, playerID, that.id)
	}

	if participant.Side != that.turn {
		return false, fmt.Errorf("%w: %s to move", apperror.ErrNotYourTurn, that.turn)
	}

	if err := that.rules.Validate(&that.board, participant.Side, move); err != nil {
		return false, fmt.Errorf("failed to validate move: %w", err)
	}

	that.board.Apply(move)
	that.moveCount++

	if that.advanceLocked(participant.Side) {
		return true, nil
	}

	if that.agent != nil && that.turn == that.black.Side {
		return that.replyLocked(), nil
	}

	return false, nil
}

// replyLocked - asks the agent for one move and applies it. An agent with no
// legal moves is a stuck side, which loses on the spot; the legality check in
// advanceLocked already guaranteed the agent has at least one move, so the
// error path is defensive.
func (that *Match) replyLocked() bool {
	botMove, err := that.agent.ChooseMove(&that.board, that.black.Side)
	if err != nil {
		that.completeLocked(that.white.Side)
		return true
	}

	that.board.Apply(botMove)
	that.moveCount++

	return that.advanceLocked(that.black.Side)
}

// advanceLocked - runs the terminal checks after a move by the given side and
// otherwise flips the turn. A side left with zero legal moves loses
// immediately; Ugolki as played here assumes a move always exists, so the
// condition ends the match rather than being silently skipped.
func (that *Match) advanceLocked(moved Side) bool {
	if winner := that.rules.Winner(&that.board); winner != SideNone {
		that.completeLocked(winner)
		return true
	}

	if that.moveCount >= that.moveLimit {
		that.completeLocked(SideNone)
		return true
	}

	next := moved.Opponent()
	if !that.rules.HasLegalMoves(&that.board, next) {
		that.completeLocked(moved)
		return true
	}

	that.turn = next

	return false
}

func (that *Match) completeLocked(winner Side) {
	that.status = StatusCompleted
	that.winner = winner
	that.turn = SideNone
	that.completedAt = time.Now()
}

// Forfeit - ends the match with the other participant (if any) declared
// winner. Valid while waiting or active.
func (that *Match) Forfeit(playerID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status == StatusCompleted {
		return fmt.Errorf("%w: match %s", apperror.ErrMatchClosed, that.id)
	}

	participant := that.participantLocked(playerID)
	if participant == nil {
		return fmt.Errorf("%w: player %s in match %s", apperror.ErrNotParticipant, playerID, that.id)
	}

	winner := SideNone
	if opponent := that.opponentLocked(participant); opponent != nil {
		winner = opponent.Side
	}

	that.completeLocked(winner)

	return nil
}

// SetConnected - updates a participant's connection liveness and returns the
// opposing participant, if bound.
func (that *Match) SetConnected(playerID string, connected bool) (*Participant, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	participant := that.participantLocked(playerID)
	if participant == nil {
		return nil, fmt.Errorf("%w: player %s in match %s", apperror.ErrNotParticipant, playerID, that.id)
	}

	participant.Connected = connected

	if opponent := that.opponentLocked(participant); opponent != nil {
		clone := *opponent
		return &clone, nil
	}

	return nil, nil
}

// IsParticipant - reports whether the player is bound to this match.
func (that *Match) IsParticipant(playerID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.participantLocked(playerID) != nil
}

// IsConnected - reports the participant's current liveness flag.
func (that *Match) IsConnected(playerID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	participant := that.participantLocked(playerID)

	return participant != nil && participant.Connected
}

// HumanParticipants - the player IDs bound to this match, excluding the bot.
func (that *Match) HumanParticipants() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	var ids []string
	for _, participant := range []*Participant{that.white, that.black} {
		if participant != nil && !participant.IsBot {
			ids = append(ids, participant.PlayerID)
		}
	}

	return ids
}

// SetRatingDeltas - records the rating changes computed at completion. The
// deltas are the only field that may be written after the terminal
// transition; the board and participants stay frozen for history.
func (that *Match) SetRatingDeltas(deltas map[string]float64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status != StatusCompleted {
		return
	}

	that.ratingDeltas = deltas
}

func (that *Match) participantLocked(playerID string) *Participant {
	if that.white != nil && that.white.PlayerID == playerID {
		return that.white
	}

	if that.black != nil && that.black.PlayerID == playerID {
		return that.black
	}

	return nil
}

func (that *Match) opponentLocked(participant *Participant) *Participant {
	if participant == that.white {
		return that.black
	}

	return that.white
}

// MatchState - a point-in-time snapshot of a match in the wire format: board
// in row-major order with 0 for empty cells and the two side sentinels, plus
// the legal moves for whichever side is about to move.
type MatchState struct {
	MatchID       string             `json:"match_id"`
	Board         Board              `json:"board"`
	Turn          string             `json:"turn,omitempty"`
	Status        string             `json:"status"`
	GameType      string             `json:"game_type"`
	MoveCount     int                `json:"move_count"`
	WhitePlayerID string             `json:"white_player_id"`
	BlackPlayerID string             `json:"black_player_id,omitempty"`
	Winner        string             `json:"winner,omitempty"`
	WinnerID      string             `json:"winner_id,omitempty"`
	LegalMoves    []Move             `json:"legal_moves,omitempty"`
	RatingDeltas  map[string]float64 `json:"rating_deltas,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
}

// State - snapshots the match. Legal moves are included only while the match
// is active, for the side to move.
func (that *Match) State() MatchState {
	that.mu.Lock()
	defer that.mu.Unlock()

	state := MatchState{
		MatchID:       that.id,
		Board:         that.board,
		Turn:          that.turn.String(),
		Status:        that.status,
		GameType:      that.matchType,
		MoveCount:     that.moveCount,
		WhitePlayerID: that.white.PlayerID,
		Winner:        that.winner.String(),
		RatingDeltas:  that.ratingDeltas,
		CreatedAt:     that.createdAt,
	}

	if that.black != nil {
		state.BlackPlayerID = that.black.PlayerID
	}

	if that.status == StatusActive {
		state.LegalMoves = that.rules.LegalMoves(&that.board, that.turn)
	}

	if that.status == StatusCompleted {
		completedAt := that.completedAt
		state.CompletedAt = &completedAt

		if winner := that.winnerParticipantLocked(); winner != nil {
			state.WinnerID = winner.PlayerID
		}
	}

	return state
}

func (that *Match) winnerParticipantLocked() *Participant {
	switch that.winner {
	case that.white.Side:
		return that.white
	case SideBlack:
		if that.black != nil {
			return that.black
		}
	}

	return nil
}

// Winner - the winning side once completed, or SideNone for a draw or an
// unfinished match.
func (that *Match) Winner() Side {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.winner
}
