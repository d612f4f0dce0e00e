package handlers

import (
	"context"
	"errors"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/telegram/render"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityWarning ErrorSeverity = iota
	SeverityError
)

// String returns string representation of error severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// HandlerError represents a structured error with user message and logging info
type HandlerError struct {
	Err         error
	UserMessage string
	LogMessage  string
	Severity    ErrorSeverity
}

// classifyHandlerError analyzes an error and returns a HandlerError with appropriate severity and messages
func classifyHandlerError(err error) *HandlerError {
	userMessage := render.ClassifyError(err)

	switch {
	case errors.Is(err, entity.ErrSessionNotFound), errors.Is(err, entity.ErrSessionClosed):
		return &HandlerError{Err: err, UserMessage: userMessage, LogMessage: "session not found", Severity: SeverityWarning}
	case errors.Is(err, entity.ErrSessionCompleted), errors.Is(err, entity.ErrSessionNotCompleted):
		return &HandlerError{Err: err, UserMessage: userMessage, LogMessage: "wrong session state", Severity: SeverityWarning}
	case errors.Is(err, entity.ErrNoCurrentQuestion):
		return &HandlerError{Err: err, UserMessage: userMessage, LogMessage: "no current question", Severity: SeverityWarning}
	case errors.Is(err, entity.ErrEmptyMessage):
		return &HandlerError{Err: err, UserMessage: render.ErrUnsupportedMessage, LogMessage: "empty message", Severity: SeverityWarning}
	}

	return &HandlerError{
		Err:         err,
		UserMessage: userMessage,
		LogMessage:  "handler error",
		Severity:    SeverityError,
	}
}

// HandleError provides centralized error handling for all handlers
// It logs the error with appropriate severity and sends a user-friendly message
func (h *BaseHandler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	handlerErr := classifyHandlerError(err)

	fields := []zap.Field{
		zap.Error(handlerErr.Err),
		zap.Int64("chat_id", chatID),
		zap.Stringer("severity", handlerErr.Severity),
	}
	if handlerErr.Severity == SeverityWarning {
		ctxzap.Warn(ctx, handlerErr.LogMessage, fields...)
	} else {
		ctxzap.Error(ctx, handlerErr.LogMessage, fields...)
	}

	h.sendMessage(chatID, handlerErr.UserMessage, nil)
}
