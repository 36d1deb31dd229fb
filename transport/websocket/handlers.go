package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/ugolki-backend/internal/entity"
)

var errMatchIDRequired = errors.New("match_id is required")

// dispatch - routes one inbound message to its handler. Errors returned here
// are reported back to the submitting peer only; the session manager pushes
// all other outcomes through the notifier.
func (that *Server) dispatch(ctx context.Context, playerID string, message *Message) error {
	switch message.Type {
	case kindCreateMatch:
		return that.handleCreateMatch(ctx, playerID, message.Data)
	case kindJoinMatch:
		return that.handleJoinMatch(ctx, playerID, message.Data)
	case kindMove:
		return that.handleMove(ctx, playerID, message.Data)
	case kindListOpen:
		return that.handleListOpen(ctx, playerID)
	case kindResume:
		return that.handleResume(ctx, playerID, message.Data)
	default:
		return fmt.Errorf("unknown message type: %q", message.Type)
	}
}

func (that *Server) handleCreateMatch(ctx context.Context, playerID string, data json.RawMessage) error {
	var payload CreateMatchPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if _, err := that.session.CreateMatch(ctx, playerID, payload.GameType); err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

func (that *Server) handleJoinMatch(ctx context.Context, playerID string, data json.RawMessage) error {
	var payload JoinMatchPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.MatchID == "" {
		return errMatchIDRequired
	}

	if _, err := that.session.JoinMatch(ctx, playerID, payload.MatchID); err != nil {
		return fmt.Errorf("failed to join match: %w", err)
	}

	return nil
}

func (that *Server) handleMove(ctx context.Context, playerID string, data json.RawMessage) error {
	var payload MovePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.MatchID == "" {
		return errMatchIDRequired
	}

	move := entity.Move{From: payload.From, To: payload.To}

	if _, err := that.session.HandleMove(ctx, playerID, payload.MatchID, move); err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	return nil
}

func (that *Server) handleListOpen(ctx context.Context, playerID string) error {
	openMatches, err := that.session.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open matches: %w", err)
	}

	that.conns.Notify(playerID, kindOpenMatches, openMatches)

	return nil
}

func (that *Server) handleResume(ctx context.Context, playerID string, data json.RawMessage) error {
	var payload ResumePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.MatchID == "" {
		return errMatchIDRequired
	}

	if _, err := that.session.Resume(ctx, playerID, payload.MatchID); err != nil {
		return fmt.Errorf("failed to resume match: %w", err)
	}

	return nil
}
