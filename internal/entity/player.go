package entity

// DefaultRating - the rating every new player starts with.
const DefaultRating = 1200.0

type Player struct {
	ID       string  `json:"id"`
	Username string  `json:"username,omitempty"`
	Rating   float64 `json:"rating"`
	MatchID  string  `json:"match_id,omitempty"`
}

// NewPlayer - a fresh player at the default rating.
func NewPlayer(id, username string) *Player {
	return &Player{
		ID:       id,
		Username: username,
		Rating:   DefaultRating,
	}
}

// BotID - the synthetic participant identity of the automated opponent in
// one match. The bot has no account and no rating.
func BotID(matchID string) string {
	return "bot:" + matchID
}
