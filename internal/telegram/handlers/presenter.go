package handlers

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/quiz"
	"github.com/futig/quiz-chat/internal/telegram/keyboard"
	"github.com/futig/quiz-chat/internal/telegram/render"
	"github.com/futig/quiz-chat/internal/telegram/state"
)

// Presenter turns system transcript entries into chat messages
type Presenter struct {
	sender       *MessageSender
	stateManager *state.Manager
	keyboard     *keyboard.Builder
	logger       *zap.Logger
}

func NewPresenter(sender *MessageSender, stateManager *state.Manager, kb *keyboard.Builder, logger *zap.Logger) *Presenter {
	return &Presenter{
		sender:       sender,
		stateManager: stateManager,
		keyboard:     kb,
		logger:       logger,
	}
}

// Observer returns the session observer for one chat. User entries are not
// echoed; the user already sees what they typed or tapped.
func (p *Presenter) Observer(userID, chatID int64) quiz.Observer {
	logger := p.logger.With(zap.Int64("user_id", userID), zap.Int64("chat_id", chatID))

	return func(entry entity.ChatEntry) {
		if entry.Author != entity.AuthorSystem {
			return
		}
		p.present(ctxzap.ToContext(context.Background(), logger), userID, chatID, entry)
	}
}

func (p *Presenter) present(ctx context.Context, userID, chatID int64, entry entity.ChatEntry) {
	q := entry.Question

	switch {
	case q != nil:
		slider := 0
		if q.Kind == entity.KindSlider {
			slider = quiz.SliderStart(q)
		}

		messageID, err := p.sender.SendCritical(ctx, chatID, render.RenderEntry(entry, slider), p.keyboard.QuestionKeyboard(q, slider, nil))
		if err != nil {
			ctxzap.Error(ctx, "failed to present question", zap.Error(err), zap.String("question_id", q.ID))
			return
		}

		if err := p.stateManager.ResetWidget(ctx, userID, chatID, q.ID, entry.Text, slider, messageID); err != nil {
			ctxzap.Error(ctx, "failed to reset widget state", zap.Error(err), zap.String("question_id", q.ID))
		}

	case entry.Text == quiz.CompletionText:
		if _, err := p.sender.SendCritical(ctx, chatID, entry.Text, nil); err != nil {
			ctxzap.Error(ctx, "failed to send completion message", zap.Error(err))
		}
		if _, err := p.sender.Send(chatID, render.MsgResultReady, p.keyboard.ResultKeyboard()); err != nil {
			ctxzap.Error(ctx, "failed to send result keyboard", zap.Error(err))
		}

	default:
		if _, err := p.sender.Send(chatID, render.RenderEntry(entry, 0), nil); err != nil {
			ctxzap.Error(ctx, "failed to send entry", zap.Error(err), zap.Uint64("entry_id", entry.ID))
		}
	}
}
