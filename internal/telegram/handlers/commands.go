package handlers

import (
	"context"
	"strings"

	"github.com/futig/quiz-chat/internal/telegram/render"
	"github.com/futig/quiz-chat/internal/telegram/state"
)

// CommandHandler handles slash commands
type CommandHandler struct {
	BaseHandler
}

func NewCommandHandler(deps Deps) *CommandHandler {
	return &CommandHandler{BaseHandler: BaseHandler{Deps: deps}}
}

// Start handles /start: any running session is replaced by a new one
func (h *CommandHandler) Start(ctx context.Context, msg *Message) error {
	return h.startSession(ctx, msg)
}

// Help handles /help
func (h *CommandHandler) Help(_ context.Context, msg *Message) error {
	h.sendMessage(msg.ChatID, render.MsgHelp, nil)
	return nil
}

// Cancel handles /cancel. The first call asks for confirmation; repeating
// the command confirms it.
func (h *CommandHandler) Cancel(ctx context.Context, msg *Message) error {
	if _, ok := h.activeSession(ctx, msg); !ok {
		return nil
	}

	var alreadyPending bool
	_, err := h.StateManager.Update(ctx, msg.UserID, func(d *state.StateData) error {
		alreadyPending = d.PendingConfirmation == "cancel"
		d.PendingConfirmation = "cancel"
		return nil
	})
	if err != nil {
		return err
	}

	if alreadyPending {
		return cancelSession(ctx, &h.BaseHandler, msg)
	}

	h.sendMessage(msg.ChatID, render.MsgConfirmCancel, h.Keyboard.CancelConfirmKeyboard())
	return nil
}

// Ask handles /ask <text>, a side-channel message that never counts as an
// answer.
func (h *CommandHandler) Ask(ctx context.Context, msg *Message) error {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		h.sendMessage(msg.ChatID, render.MsgAskUsage, nil)
		return nil
	}

	sessionID, ok := h.activeSession(ctx, msg)
	if !ok {
		return nil
	}

	return sendSideMessage(ctx, &h.BaseHandler, msg, sessionID, text)
}
