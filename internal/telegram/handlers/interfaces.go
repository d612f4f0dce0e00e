package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/quiz-chat/internal/entity"
	sessionuc "github.com/futig/quiz-chat/internal/usecase/session"
)

// SessionUsecase defines the session operations the bot drives
type SessionUsecase interface {
	StartSession(ctx context.Context, opts sessionuc.StartOptions) (*entity.Session, error)
	CurrentQuestion(ctx context.Context, sessionID string) (*entity.QuestionDefinition, error)
	SubmitAnswer(ctx context.Context, sessionID string, raw any) (*entity.Session, error)
	SubmitAnswerValue(ctx context.Context, sessionID string, value entity.AnswerValue) (*entity.Session, error)
	SubmitMessage(ctx context.Context, sessionID, text string) (*entity.Session, error)
	CancelSession(ctx context.Context, sessionID string) error
	ExportResult(ctx context.Context, sessionID string, format entity.ResultFormat) (*sessionuc.ExportedResult, error)
}

// BotAPI is the part of *tgbotapi.BotAPI the handlers use
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}
