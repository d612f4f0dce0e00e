package session

import (
	"context"

	"github.com/futig/quiz-chat/internal/entity"
)

type ResultRepository interface {
	Save(ctx context.Context, result *entity.AssessmentResult) error
	Get(ctx context.Context, sessionID string) (*entity.AssessmentResult, error)
}

type CallbackConnector interface {
	SendEntry(ctx context.Context, callbackURL string, data *entity.CallbackEntryData)
	SendFinalResult(ctx context.Context, callbackURL string, data *entity.CallbackFinalResultData)
	SendError(ctx context.Context, callbackURL string, requestID string, message string, details map[string]any)
}
