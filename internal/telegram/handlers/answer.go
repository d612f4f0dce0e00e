package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/telegram/render"
)

// AnswerHandler handles plain text. On a text or number question the text
// is the answer; anywhere else it goes to the side channel.
type AnswerHandler struct {
	BaseHandler
}

func NewAnswerHandler(deps Deps) *AnswerHandler {
	return &AnswerHandler{BaseHandler: BaseHandler{Deps: deps}}
}

func (h *AnswerHandler) Handle(ctx context.Context, msg *Message) error {
	if strings.TrimSpace(msg.Text) == "" {
		h.sendMessage(msg.ChatID, render.ErrUnsupportedMessage, nil)
		return nil
	}

	sessionID, ok := h.activeSession(ctx, msg)
	if !ok {
		return nil
	}

	q, err := h.SessionUC.CurrentQuestion(ctx, sessionID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	if q != nil && (q.Kind == entity.KindText || q.Kind == entity.KindNumber) {
		return h.answer(ctx, msg, sessionID, q)
	}

	return sendSideMessage(ctx, &h.BaseHandler, msg, sessionID, msg.Text)
}

func (h *AnswerHandler) answer(ctx context.Context, msg *Message, sessionID string, q *entity.QuestionDefinition) error {
	_, err := h.SessionUC.SubmitAnswer(ctx, sessionID, msg.Text)

	var invalid *entity.InvalidAnswerError
	switch {
	case errors.As(err, &invalid):
		ctxzap.Info(ctx, "answer rejected",
			zap.String("question_id", invalid.QuestionID),
			zap.String("reason", string(invalid.Reason)),
		)
		h.sendMessage(msg.ChatID, render.RenderInvalidAnswer(q, invalid), nil)
		return nil
	case err != nil:
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	widget := 0
	if session, err := h.StateManager.GetSession(ctx, msg.UserID); err == nil && session.StateData.QuestionID == q.ID {
		widget = session.StateData.WidgetMessageID
	}
	h.submitted(ctx, msg, widget)
	return nil
}

// sendSideMessage posts free text to the session; the canned reply arrives
// through the presenter after the reply delay.
func sendSideMessage(ctx context.Context, h *BaseHandler, msg *Message, sessionID, text string) error {
	if _, err := h.SessionUC.SubmitMessage(ctx, sessionID, text); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}
	h.Sender.Typing(msg.ChatID)
	return nil
}
