package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/telegram/keyboard"
	"github.com/futig/quiz-chat/internal/telegram/render"
	"github.com/futig/quiz-chat/internal/telegram/state"
	sessionuc "github.com/futig/quiz-chat/internal/usecase/session"
)

// Message represents a normalized Telegram message
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	CallbackData string
	CallbackID   string
}

// Handler processes one kind of update
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Deps are shared by every handler
type Deps struct {
	Sender       *MessageSender
	StateManager *state.Manager
	SessionUC    SessionUsecase
	Keyboard     *keyboard.Builder
	Presenter    *Presenter
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	Deps
}

// sendMessage is a convenience wrapper for Sender.Send
func (h *BaseHandler) sendMessage(chatID int64, text string, markup any) {
	_, _ = h.Sender.Send(chatID, text, markup)
}

// activeSession returns the session of a user or tells the user there is none
func (h *BaseHandler) activeSession(ctx context.Context, msg *Message) (string, bool) {
	sessionID, err := h.StateManager.SessionID(ctx, msg.UserID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return "", false
	}
	if sessionID == "" {
		h.sendMessage(msg.ChatID, render.ErrNoSession, nil)
		return "", false
	}
	return sessionID, true
}

// startSession replaces whatever session the user had with a fresh one
func (h *BaseHandler) startSession(ctx context.Context, msg *Message) error {
	previous, err := h.StateManager.SessionID(ctx, msg.UserID)
	if err != nil {
		return err
	}

	if previous != "" {
		if err := h.SessionUC.CancelSession(ctx, previous); err != nil && !errors.Is(err, entity.ErrSessionNotFound) {
			ctxzap.Warn(ctx, "failed to cancel previous session",
				zap.Error(err),
				zap.String("session_id", previous),
			)
		}
	}
	if err := h.StateManager.DeleteSession(ctx, msg.UserID); err != nil {
		return err
	}

	session, err := h.SessionUC.StartSession(ctx, sessionuc.StartOptions{
		Observer: h.Presenter.Observer(msg.UserID, msg.ChatID),
	})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	if err := h.StateManager.Bind(ctx, msg.UserID, msg.ChatID, session.ID); err != nil {
		return err
	}

	ctxzap.Info(ctx, "telegram session started",
		zap.String("session_id", session.ID),
		zap.Int64("user_id", msg.UserID),
	)
	return nil
}

// submitted finishes a successful answer: the widget loses its keyboard and
// the typing indicator covers the delay before the next entry.
func (h *BaseHandler) submitted(ctx context.Context, msg *Message, widgetMessageID int) {
	h.Sender.RemoveKeyboard(msg.ChatID, widgetMessageID)
	h.Sender.Typing(msg.ChatID)
	ctxzap.Debug(ctx, "answer submitted", zap.Int64("user_id", msg.UserID))
}
