package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/ugolki-backend/internal/apperror"
	"github.com/rocketscienceinc/ugolki-backend/internal/entity"
	"github.com/rocketscienceinc/ugolki-backend/internal/pkg"
	"github.com/rocketscienceinc/ugolki-backend/internal/service"
)

// Outbound message kinds pushed through the notifier.
const (
	KindMatchState           = "match_state"
	KindMatchOver            = "match_over"
	KindOpponentDisconnected = "opponent_disconnected"
)

type playerRepo interface {
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetOrCreate(ctx context.Context, id, username string) (*entity.Player, error)
}

type matchArchive interface {
	Save(ctx context.Context, state *entity.MatchState) error
}

// Notifier - delivers an outbound message to one connected player. Must not
// block: the transport queues per-connection, so the session manager never
// waits on socket I/O.
type Notifier interface {
	Notify(playerID, kind string, payload any)
}

// OpenMatch - a waiting vs-peer match published for discovery.
type OpenMatch struct {
	MatchID       string    `json:"match_id"`
	Creator       string    `json:"creator"`
	CreatorRating float64   `json:"creator_rating"`
	CreatedAt     time.Time `json:"created_at"`
}

// MatchOver - the terminal notice sent to both participants.
type MatchOver struct {
	MatchID      string             `json:"match_id"`
	Winner       string             `json:"winner,omitempty"`
	WinnerID     string             `json:"winner_id,omitempty"`
	RatingDeltas map[string]float64 `json:"rating_deltas,omitempty"`
}

// DisconnectNotice - tells the remaining participant the opponent dropped.
type DisconnectNotice struct {
	MatchID  string `json:"match_id"`
	PlayerID string `json:"player_id"`
}

// SessionManager - owns every in-flight match. The registry and the
// discovery set live behind their own lock; each match serializes its own
// transitions, so unrelated matches never contend.
type SessionManager struct {
	logger   *slog.Logger
	rules    entity.Rules
	agent    entity.Agent
	players  playerRepo
	archive  matchArchive
	notifier Notifier

	grace     time.Duration
	moveLimit int

	mu              sync.RWMutex
	matches         map[string]*entity.Match
	open            map[string]struct{}
	matchesByPlayer map[string]map[string]struct{}
	graceTimers     map[string]*time.Timer
}

func NewSessionManager(
	logger *slog.Logger,
	rules entity.Rules,
	agent entity.Agent,
	players playerRepo,
	archive matchArchive,
	notifier Notifier,
	grace time.Duration,
	moveLimit int,
) *SessionManager {
	return &SessionManager{
		logger:   logger,
		rules:    rules,
		agent:    agent,
		players:  players,
		archive:  archive,
		notifier: notifier,

		grace:     grace,
		moveLimit: moveLimit,

		matches:         make(map[string]*entity.Match),
		open:            make(map[string]struct{}),
		matchesByPlayer: make(map[string]map[string]struct{}),
		graceTimers:     make(map[string]*time.Timer),
	}
}

// GetOrCreatePlayer - resolves a connection's identity to a stored player,
// bootstrapping new players at the default rating.
func (that *SessionManager) GetOrCreatePlayer(ctx context.Context, id, username string) (*entity.Player, error) {
	player, err := that.players.GetOrCreate(ctx, id, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create player: %w", err)
	}

	return player, nil
}

// CreateMatch - allocates a new match for the creator. Automated matches
// activate immediately with the built-in opponent on the second side;
// vs-peer matches stay waiting and are published for discovery.
func (that *SessionManager) CreateMatch(ctx context.Context, playerID, gameType string) (entity.MatchState, error) {
	log := that.logger.With("method", "CreateMatch", "playerID", playerID)

	if gameType != entity.TypeAutomated && gameType != entity.TypePeer {
		return entity.MatchState{}, fmt.Errorf("%w: %q", apperror.ErrUnknownGameType, gameType)
	}

	matchID, err := pkg.GenerateMatchID()
	if err != nil {
		return entity.MatchState{}, fmt.Errorf("failed to generate match id: %w", err)
	}

	match := entity.NewMatch(matchID, gameType, playerID, that.rules, that.moveLimit)

	if gameType == entity.TypeAutomated {
		if err = match.JoinBot(that.agent, entity.BotID(matchID)); err != nil {
			return entity.MatchState{}, fmt.Errorf("failed to seat the automated opponent: %w", err)
		}
	}

	that.mu.Lock()
	that.matches[matchID] = match
	that.indexPlayerLocked(playerID, matchID)
	if gameType == entity.TypePeer {
		that.open[matchID] = struct{}{}
	}
	that.mu.Unlock()

	log.Info("match created", "matchID", matchID, "gameType", gameType)

	that.setPlayerMatch(ctx, playerID, matchID)

	state := match.State()
	that.notifier.Notify(playerID, KindMatchState, state)

	return state, nil
}

// JoinMatch - binds the joiner as the second participant of a waiting
// vs-peer match and notifies both sides.
func (that *SessionManager) JoinMatch(ctx context.Context, playerID, matchID string) (entity.MatchState, error) {
	log := that.logger.With("method", "JoinMatch", "playerID", playerID, "matchID", matchID)

	match, err := that.match(matchID)
	if err != nil {
		return entity.MatchState{}, err
	}

	if err = match.Join(playerID); err != nil {
		return entity.MatchState{}, fmt.Errorf("failed to join match: %w", err)
	}

	that.mu.Lock()
	delete(that.open, matchID)
	that.indexPlayerLocked(playerID, matchID)
	that.mu.Unlock()

	log.Info("player joined match")

	that.setPlayerMatch(ctx, playerID, matchID)

	state := match.State()
	that.broadcast(match, KindMatchState, state)

	return state, nil
}

// HandleMove - forwards a move to the match. For automated matches the
// agent's reply is applied inside the same per-match critical section, so
// exactly one reply is appended before the broadcast. On the terminal
// transition, ratings are updated and the match is archived.
func (that *SessionManager) HandleMove(ctx context.Context, playerID, matchID string, move entity.Move) (entity.MatchState, error) {
	match, err := that.match(matchID)
	if err != nil {
		return entity.MatchState{}, err
	}

	completed, err := match.SubmitMove(playerID, move)
	if err != nil {
		return entity.MatchState{}, fmt.Errorf("failed to submit move: %w", err)
	}

	if completed {
		that.finishMatch(ctx, match)
		return match.State(), nil
	}

	state := match.State()
	that.broadcast(match, KindMatchState, state)

	return state, nil
}

// ListOpen - the waiting vs-peer matches, with creator identity and rating
// for discovery.
func (that *SessionManager) ListOpen(ctx context.Context) ([]OpenMatch, error) {
	log := that.logger.With("method", "ListOpen")

	that.mu.RLock()
	waiting := make([]*entity.Match, 0, len(that.open))
	for matchID := range that.open {
		if match, ok := that.matches[matchID]; ok {
			waiting = append(waiting, match)
		}
	}
	that.mu.RUnlock()

	openMatches := make([]OpenMatch, 0, len(waiting))

	for _, match := range waiting {
		state := match.State()
		if state.Status != entity.StatusWaiting {
			continue
		}

		creator, err := that.players.GetByID(ctx, state.WhitePlayerID)
		if err != nil {
			log.Error("failed to get creator", "matchID", state.MatchID, "error", err)
			continue
		}

		openMatches = append(openMatches, OpenMatch{
			MatchID:       state.MatchID,
			Creator:       creator.Username,
			CreatorRating: creator.Rating,
			CreatedAt:     state.CreatedAt,
		})
	}

	return openMatches, nil
}

// Resume - reattaches a connection to a live match the player participates
// in. The existing match instance keeps serving; nothing is replaced.
func (that *SessionManager) Resume(ctx context.Context, playerID, matchID string) (entity.MatchState, error) {
	log := that.logger.With("method", "Resume", "playerID", playerID, "matchID", matchID)

	match, err := that.match(matchID)
	if err != nil {
		return entity.MatchState{}, err
	}

	if !match.IsParticipant(playerID) {
		return entity.MatchState{}, fmt.Errorf("%w: player %s in match %s", apperror.ErrNotParticipant, playerID, matchID)
	}

	if match.Status() == entity.StatusCompleted {
		return entity.MatchState{}, fmt.Errorf("%w: match %s", apperror.ErrMatchClosed, matchID)
	}

	if _, err = match.SetConnected(playerID, true); err != nil {
		return entity.MatchState{}, fmt.Errorf("failed to mark player connected: %w", err)
	}

	that.cancelGraceTimer(matchID, playerID)

	that.mu.Lock()
	that.indexPlayerLocked(playerID, matchID)
	that.mu.Unlock()

	log.Info("player resumed match")

	state := match.State()
	that.notifier.Notify(playerID, KindMatchState, state)

	return state, nil
}

// HandleDisconnect - marks the player's bindings inactive across every live
// match they participate in. Disconnection is a lifecycle event, not an
// error: the match survives, the opponent is notified, and a grace timer
// forfeits only if the player never resumes.
func (that *SessionManager) HandleDisconnect(ctx context.Context, playerID string) {
	log := that.logger.With("method", "HandleDisconnect", "playerID", playerID)

	that.mu.RLock()
	matchIDs := make([]string, 0, len(that.matchesByPlayer[playerID]))
	for matchID := range that.matchesByPlayer[playerID] {
		matchIDs = append(matchIDs, matchID)
	}
	that.mu.RUnlock()

	for _, matchID := range matchIDs {
		match, err := that.match(matchID)
		if err != nil {
			continue
		}

		if match.Status() == entity.StatusCompleted {
			continue
		}

		opponent, err := match.SetConnected(playerID, false)
		if err != nil {
			continue
		}

		log.Info("participant disconnected", "matchID", matchID)

		if opponent != nil && !opponent.IsBot {
			that.notifier.Notify(opponent.PlayerID, KindOpponentDisconnected, DisconnectNotice{
				MatchID:  matchID,
				PlayerID: playerID,
			})
		}

		that.startGraceTimer(ctx, match, playerID)
	}
}

// CleanupCompleted - drops completed matches older than maxAge from the
// registry. Their archived snapshots remain in storage.
func (that *SessionManager) CleanupCompleted(maxAge time.Duration) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	count := 0
	now := time.Now()

	for matchID, match := range that.matches {
		state := match.State()
		if state.Status != entity.StatusCompleted || state.CompletedAt == nil {
			continue
		}

		if now.Sub(*state.CompletedAt) < maxAge {
			continue
		}

		delete(that.matches, matchID)
		delete(that.open, matchID)
		for _, playerID := range match.HumanParticipants() {
			that.unindexPlayerLocked(playerID, matchID)
		}
		count++
	}

	if count > 0 {
		that.logger.Info("removed stale matches", "count", count)
	}

	return count
}

func (that *SessionManager) match(matchID string) (*entity.Match, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	match, ok := that.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrMatchNotFound, matchID)
	}

	return match, nil
}

// setPlayerMatch - records the player's current match on their stored
// profile. An empty matchID clears it. Unknown players (guests that never
// persisted) are skipped silently.
func (that *SessionManager) setPlayerMatch(ctx context.Context, playerID, matchID string) {
	player, err := that.players.GetByID(ctx, playerID)
	if err != nil {
		return
	}

	if player.MatchID == matchID {
		return
	}

	player.MatchID = matchID
	if err = that.players.CreateOrUpdate(ctx, player); err != nil {
		that.logger.Error("failed to update player match binding", "playerID", playerID, "error", err)
	}
}

// clearPlayerMatch - drops the player's match binding, but only if it still
// points at the given match; a newer binding stays untouched.
func (that *SessionManager) clearPlayerMatch(ctx context.Context, playerID, matchID string) {
	player, err := that.players.GetByID(ctx, playerID)
	if err != nil || player.MatchID != matchID {
		return
	}

	player.MatchID = ""
	if err = that.players.CreateOrUpdate(ctx, player); err != nil {
		that.logger.Error("failed to clear player match binding", "playerID", playerID, "error", err)
	}
}

func (that *SessionManager) indexPlayerLocked(playerID, matchID string) {
	if that.matchesByPlayer[playerID] == nil {
		that.matchesByPlayer[playerID] = make(map[string]struct{})
	}

	that.matchesByPlayer[playerID][matchID] = struct{}{}
}

func (that *SessionManager) unindexPlayerLocked(playerID, matchID string) {
	delete(that.matchesByPlayer[playerID], matchID)
	if len(that.matchesByPlayer[playerID]) == 0 {
		delete(that.matchesByPlayer, playerID)
	}
}

// broadcast - hands the message to every human participant's outbound queue.
func (that *SessionManager) broadcast(match *entity.Match, kind string, payload any) {
	for _, playerID := range match.HumanParticipants() {
		that.notifier.Notify(playerID, kind, payload)
	}
}

// startGraceTimer - arms the auto-forfeit for a disconnected participant. A
// zero grace period disables the policy entirely.
func (that *SessionManager) startGraceTimer(ctx context.Context, match *entity.Match, playerID string) {
	if that.grace <= 0 {
		return
	}

	matchID := match.ID()
	key := graceKey(matchID, playerID)

	// register under the lock before the timer can fire, so the callback's
	// deregistration always finds its own entry
	that.mu.Lock()
	defer that.mu.Unlock()

	if old, ok := that.graceTimers[key]; ok {
		old.Stop()
	}

	that.graceTimers[key] = time.AfterFunc(that.grace, func() {
		that.mu.Lock()
		delete(that.graceTimers, key)
		that.mu.Unlock()

		if match.IsConnected(playerID) {
			return
		}

		if err := match.Forfeit(playerID); err != nil {
			return
		}

		that.logger.Info("participant forfeited after grace period", "matchID", matchID, "playerID", playerID)
		that.finishMatch(ctx, match)
	})
}

func (that *SessionManager) cancelGraceTimer(matchID, playerID string) {
	key := graceKey(matchID, playerID)

	that.mu.Lock()
	defer that.mu.Unlock()

	if timer, ok := that.graceTimers[key]; ok {
		timer.Stop()
		delete(that.graceTimers, key)
	}
}

func graceKey(matchID, playerID string) string {
	return matchID + ":" + playerID
}

// finishMatch - runs exactly once per terminal transition: computes rating
// updates for vs-peer matches, archives the final snapshot, and broadcasts
// the terminal notice.
func (that *SessionManager) finishMatch(ctx context.Context, match *entity.Match) {
	log := that.logger.With("method", "finishMatch", "matchID", match.ID())

	matchID := match.ID()

	that.mu.Lock()
	delete(that.open, matchID)
	for _, playerID := range match.HumanParticipants() {
		key := graceKey(matchID, playerID)
		if timer, ok := that.graceTimers[key]; ok {
			timer.Stop()
			delete(that.graceTimers, key)
		}
	}
	that.mu.Unlock()

	deltas := that.updateRatings(ctx, match)
	match.SetRatingDeltas(deltas)

	for _, playerID := range match.HumanParticipants() {
		that.clearPlayerMatch(ctx, playerID, matchID)
	}

	state := match.State()

	if err := that.archive.Save(ctx, &state); err != nil {
		log.Error("failed to archive match", "error", err)
	}

	that.broadcast(match, KindMatchState, state)
	that.broadcast(match, KindMatchOver, MatchOver{
		MatchID:      state.MatchID,
		Winner:       state.Winner,
		WinnerID:     state.WinnerID,
		RatingDeltas: deltas,
	})

	log.Info("match completed", "winner", state.Winner, "moves", state.MoveCount)
}

// updateRatings - applies the Elo update for completed vs-peer matches with
// two bound participants. Automated matches and matches forfeited while
// waiting complete with no rating change.
func (that *SessionManager) updateRatings(ctx context.Context, match *entity.Match) map[string]float64 {
	log := that.logger.With("method", "updateRatings", "matchID", match.ID())

	state := match.State()
	if state.GameType != entity.TypePeer || state.BlackPlayerID == "" {
		return nil
	}

	white, err := that.players.GetByID(ctx, state.WhitePlayerID)
	if err != nil {
		log.Error("failed to get white player", "error", err)
		return nil
	}

	black, err := that.players.GetByID(ctx, state.BlackPlayerID)
	if err != nil {
		log.Error("failed to get black player", "error", err)
		return nil
	}

	var outcomeWhite float64
	switch match.Winner() {
	case entity.SideWhite:
		outcomeWhite = 1
	case entity.SideBlack:
		outcomeWhite = 0
	default:
		outcomeWhite = 0.5
	}

	newWhite, newBlack := service.UpdateRatings(white.Rating, black.Rating, outcomeWhite)

	deltas := map[string]float64{
		white.ID: newWhite - white.Rating,
		black.ID: newBlack - black.Rating,
	}

	white.Rating = newWhite
	black.Rating = newBlack

	for _, player := range []*entity.Player{white, black} {
		if err = that.players.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to persist rating", "playerID", player.ID, "error", err)
		}
	}

	return deltas
}
