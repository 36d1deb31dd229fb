package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/ugolki-backend/internal/auth"
	"github.com/rocketscienceinc/ugolki-backend/internal/config"
	"github.com/rocketscienceinc/ugolki-backend/internal/repository"
	"github.com/rocketscienceinc/ugolki-backend/internal/repository/storage"
	"github.com/rocketscienceinc/ugolki-backend/internal/service"
	"github.com/rocketscienceinc/ugolki-backend/internal/ugolki"
	"github.com/rocketscienceinc/ugolki-backend/internal/usecase"
	"github.com/rocketscienceinc/ugolki-backend/transport/rest"
	"github.com/rocketscienceinc/ugolki-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

const completedMatchMaxAge = time.Hour

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	playerRepo := repository.NewPlayerRepository(redisStorage)
	matchRepo := repository.NewMatchRepository(redisStorage)

	rules := ugolki.NewEngine()
	agent := service.NewRandomAgent(rules)

	conns := websocket.NewConnectionManager(logger)

	sessions := usecase.NewSessionManager(
		logger,
		rules,
		agent,
		playerRepo,
		matchRepo,
		conns,
		time.Duration(conf.Game.DisconnectGraceSeconds)*time.Second,
		conf.Game.MoveLimit,
	)

	tokens := auth.NewTokenValidator(conf.JWTSecretKey)

	// sweep finished matches out of memory
	go func() {
		ticker := time.NewTicker(completedMatchMaxAge)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := sessions.CleanupCompleted(completedMatchMaxAge)
				if removed > 0 {
					log.Info("Removed completed matches", "count", removed)
				}
			}
		}
	}()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, playerRepo); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, sessions, tokens, conns)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
