package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/ugolki-backend/internal/auth"
	"github.com/rocketscienceinc/ugolki-backend/internal/entity"
	"github.com/rocketscienceinc/ugolki-backend/internal/pkg"
	"github.com/rocketscienceinc/ugolki-backend/internal/usecase"
)

type uSession interface {
	GetOrCreatePlayer(ctx context.Context, id, username string) (*entity.Player, error)

	CreateMatch(ctx context.Context, playerID, gameType string) (entity.MatchState, error)
	JoinMatch(ctx context.Context, playerID, matchID string) (entity.MatchState, error)
	HandleMove(ctx context.Context, playerID, matchID string, move entity.Move) (entity.MatchState, error)
	ListOpen(ctx context.Context) ([]usecase.OpenMatch, error)
	Resume(ctx context.Context, playerID, matchID string) (entity.MatchState, error)

	HandleDisconnect(ctx context.Context, playerID string)
}

type Server struct {
	logger   *slog.Logger
	session  uSession
	tokens   *auth.TokenValidator
	conns    *ConnectionManager
	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, session uSession, tokens *auth.TokenValidator, conns *ConnectionManager) *Server {
	return &Server{
		logger:  logger,
		session: session,
		tokens:  tokens,
		conns:   conns,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  0, // connections are long-lived
		WriteTimeout: 0,
		IdleTimeout:  0,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConnection - upgrades the request, resolves the peer's identity from
// the token, and runs the read loop until the peer goes away.
func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	playerID, username, err := that.identify(req)
	if err != nil {
		log.Error("failed to identify peer", "error", err)
		http.Error(writer, "invalid token", http.StatusUnauthorized)
		return
	}

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	player, err := that.session.GetOrCreatePlayer(ctx, playerID, username)
	if err != nil {
		log.Error("failed to resolve player", "error", err)
		_ = ws.Close()
		return
	}

	log = log.With("playerID", player.ID)

	that.conns.Add(player.ID, ws)

	that.conns.Notify(player.ID, kindConnected, ConnectedPayload{
		PlayerID: player.ID,
		Username: player.Username,
		Rating:   player.Rating,
		MatchID:  player.MatchID,
	})

	log.Info("peer connected")

	that.readLoop(ctx, ws, player.ID)

	if that.conns.RemoveIfCurrent(player.ID, ws) {
		that.session.HandleDisconnect(ctx, player.ID)
		log.Info("peer disconnected")
	}
}

// identify - resolves the peer's identity. A signed token binds the
// connection to an account; without one the peer plays as a fresh anonymous
// guest.
func (that *Server) identify(req *http.Request) (string, string, error) {
	token := req.URL.Query().Get("token")
	if token == "" {
		guestID, err := pkg.GeneratePlayerID()
		if err != nil {
			return "", "", fmt.Errorf("failed to generate guest id: %w", err)
		}

		return guestID, "", nil
	}

	claims, err := that.tokens.Validate(token)
	if err != nil {
		return "", "", fmt.Errorf("failed to validate token: %w", err)
	}

	return claims.PlayerID, claims.Username, nil
}

// readLoop - dispatches inbound messages until the socket closes.
func (that *Server) readLoop(ctx context.Context, ws *websocket.Conn, playerID string) {
	log := that.logger.With("method", "readLoop", "playerID", playerID)

	for {
		var message Message
		if err := ws.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("failed to read message", "error", err)
			}
			return
		}

		if err := that.dispatch(ctx, playerID, &message); err != nil {
			log.Error("failed to process message", "kind", message.Type, "error", err)
			that.conns.Notify(playerID, kindError, ErrorPayload{Message: err.Error()})
		}
	}
}
