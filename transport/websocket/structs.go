package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/ugolki-backend/internal/entity"
)

// Inbound message kinds accepted from a connected peer.
const (
	kindCreateMatch = "create_match"
	kindJoinMatch   = "join_match"
	kindMove        = "move"
	kindListOpen    = "list_open"
	kindResume      = "resume"
)

// Outbound message kinds produced by this server, in addition to the ones
// the session manager pushes through the notifier.
const (
	kindConnected   = "connected"
	kindOpenMatches = "open_matches"
	kindError       = "error"
)

// Message - one frame on the wire: a kind tag and a kind-specific payload.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type CreateMatchPayload struct {
	GameType string `json:"game_type"`
}

type JoinMatchPayload struct {
	MatchID string `json:"match_id"`
}

type MovePayload struct {
	MatchID string      `json:"match_id"`
	From    entity.Cell `json:"from"`
	To      entity.Cell `json:"to"`
}

type ResumePayload struct {
	MatchID string `json:"match_id"`
}

type ConnectedPayload struct {
	PlayerID string  `json:"player_id"`
	Username string  `json:"username,omitempty"`
	Rating   float64 `json:"rating"`
	// MatchID points at the live match this player is bound to, if any, so a
	// reconnecting client knows what to resume.
	MatchID string `json:"match_id,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
