package session

import (
	"context"

	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/quiz"
	sessionuc "github.com/futig/quiz-chat/internal/usecase/session"
)

type SessionUsecase interface {
	StartSession(ctx context.Context, opts sessionuc.StartOptions) (*entity.Session, error)
	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)
	CurrentQuestion(ctx context.Context, sessionID string) (*entity.QuestionDefinition, error)
	SubmitAnswer(ctx context.Context, sessionID string, raw any) (*entity.Session, error)
	SubmitMessage(ctx context.Context, sessionID, text string) (*entity.Session, error)
	CancelSession(ctx context.Context, sessionID string) error
	ExportResult(ctx context.Context, sessionID string, format entity.ResultFormat) (*sessionuc.ExportedResult, error)
	Graph() *quiz.Graph
}
