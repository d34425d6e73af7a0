package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-web/internal/view"
)

// handleConnect - returns the session's game, opening a new session when the client has none.
func (that *Server) handleConnect(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
			return that.sendErrorResponse(bufrw, msg.Action, "malformed payload")
		}
	}

	session := payloadReq.Session
	if session == nil || session.ID == "" {
		session = &Session{ID: uuid.NewString()}
		log.Info("registered new session", "session", session.ID)
	}

	game, err := that.sessionUseCase.GetOrCreateSession(ctx, session.ID)
	if err != nil {
		log.Error("failed to get session", "session", session.ID, "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to get session")
	}

	board := view.New(*game)

	if err = that.sendMessage(bufrw, msg.Action, Payload{Session: session, Game: &board}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) handleActivate(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, "malformed payload")
	}

	if payloadReq.Cell == nil {
		return that.sendErrorResponse(bufrw, msg.Action, "Cell is required")
	}

	return that.dispatch(ctx, msg.Action, bufrw, payloadReq.Session, tictactoe.Activate(payloadReq.Cell.Row, payloadReq.Cell.Col))
}

func (that *Server) handleReset(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, "malformed payload")
	}

	return that.dispatch(ctx, msg.Action, bufrw, payloadReq.Session, tictactoe.Reset())
}

// handleEndSession - drops the session's game. The client has to connect again to play.
func (that *Server) handleEndSession(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, "malformed payload")
	}

	session := payloadReq.Session
	if session == nil || session.ID == "" {
		return that.sendErrorResponse(bufrw, msg.Action, "Session is required")
	}

	if err := that.sessionUseCase.EndSession(ctx, session.ID); err != nil {
		if errors.Is(err, apperror.ErrSessionNotFound) {
			return that.sendErrorResponse(bufrw, msg.Action, "session not found")
		}

		that.logger.Error("failed to end session", "method", "handleEndSession", "session", session.ID, "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to end session")
	}

	if err := that.sendMessage(bufrw, msg.Action, Payload{Session: session}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) dispatch(ctx context.Context, action string, bufrw *bufio.ReadWriter, session *Session, intent tictactoe.Intent) error {
	log := that.logger.With("method", "dispatch", "action", action)

	if session == nil || session.ID == "" {
		return that.sendErrorResponse(bufrw, action, "Session is required")
	}

	game, redraw, err := that.sessionUseCase.Dispatch(ctx, session.ID, intent)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidCell) {
			return that.sendErrorResponse(bufrw, action, err.Error())
		}

		log.Error("failed to dispatch intent", "session", session.ID, "error", err)
		return that.sendErrorResponse(bufrw, action, "failed to apply intent")
	}

	board := view.New(*game)

	if err = that.sendMessage(bufrw, action, Payload{Session: session, Game: &board, Redraw: redraw}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}
