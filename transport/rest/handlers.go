package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rocketscienceinc/ugolki-backend/internal/entity"
)

const defaultLeaderboardLimit = 10

type leaderboardProvider interface {
	Leaderboard(ctx context.Context, limit int64) ([]*entity.Player, error)
}

type handler struct {
	logger  *slog.Logger
	players leaderboardProvider
}

func newHandler(logger *slog.Logger, players leaderboardProvider) *handler {
	return &handler{
		logger:  logger,
		players: players,
	}
}

func (that *handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("ok")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "Leaderboard")

	limit := int64(defaultLeaderboardLimit)

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		limit = parsed
	}

	players, err := that.players.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Error("failed to load leaderboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err = json.NewEncoder(w).Encode(players); err != nil {
		log.Error("failed to encode leaderboard", "error", err)
	}
}
