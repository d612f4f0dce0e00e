package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/quiz"
	"github.com/futig/quiz-chat/internal/telegram/keyboard"
	"github.com/futig/quiz-chat/internal/telegram/render"
	"github.com/futig/quiz-chat/internal/telegram/state"
)

// errStale marks a button that belongs to a question no longer on screen
var errStale = errors.New("stale widget")

// CallbackHandler handles inline keyboard presses
type CallbackHandler struct {
	BaseHandler
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(deps Deps) *CallbackHandler {
	return &CallbackHandler{BaseHandler: BaseHandler{Deps: deps}}
}

// Handle routes callback queries to appropriate actions. Every query is
// answered exactly once, with a toast when there is something to say.
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		h.Sender.AnswerCallback(msg.CallbackID, "")
		return fmt.Errorf("parse callback: %w", err)
	}

	ctxzap.Debug(ctx, "handling callback",
		zap.String("action", data.Action),
		zap.String("value", data.Value),
		zap.Int64("user_id", msg.UserID),
	)

	toast, err := h.route(ctx, msg, data)
	if errors.Is(err, errStale) {
		toast, err = render.ToastStale, nil
	}
	h.Sender.AnswerCallback(msg.CallbackID, toast)

	return err
}

func (h *CallbackHandler) route(ctx context.Context, msg *Message, data *keyboard.CallbackData) (string, error) {
	switch data.Action {
	case keyboard.ActionStart:
		return "", h.startSession(ctx, msg)
	case keyboard.ActionDownload:
		return "", h.handleDownload(ctx, msg, data.Value)
	case keyboard.ActionConfirm:
		return "", h.handleConfirmation(ctx, msg, data.Value)
	}

	sessionID, ok := h.activeSession(ctx, msg)
	if !ok {
		return "", nil
	}

	_, arg := data.Question()
	q, err := h.SessionUC.CurrentQuestion(ctx, sessionID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return "", nil
	}
	if q == nil || !data.IsFor(q.ID) {
		return "", errStale
	}

	switch data.Action {
	case keyboard.ActionOption:
		return h.handleOption(ctx, msg, sessionID, q, arg)
	case keyboard.ActionToggle:
		return h.handleToggle(ctx, msg, q, arg)
	case keyboard.ActionSlider:
		return "", h.handleSlider(ctx, msg, q, arg)
	case keyboard.ActionSubmit:
		return "", h.handleSubmit(ctx, msg, sessionID, q)
	case keyboard.ActionHelp:
		return "", h.handleHelp(ctx, msg, sessionID)
	default:
		return "", fmt.Errorf("unknown callback action: %s", data.Action)
	}
}

func optionAt(q *entity.QuestionDefinition, arg string) (entity.Option, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 || i >= len(q.Options) {
		return entity.Option{}, errStale
	}
	return q.Options[i], nil
}

func (h *CallbackHandler) handleOption(ctx context.Context, msg *Message, sessionID string, q *entity.QuestionDefinition, arg string) (string, error) {
	if q.Kind != entity.KindSingleChoice {
		return "", errStale
	}

	opt, err := optionAt(q, arg)
	if err != nil {
		return "", err
	}

	value := entity.ChoiceAnswer(opt.Value)
	if !h.submit(ctx, msg, sessionID, q, value, msg.MessageID) {
		return "", nil
	}
	return quiz.FormatAnswer(q, value), nil
}

func (h *CallbackHandler) handleToggle(ctx context.Context, msg *Message, q *entity.QuestionDefinition, arg string) (string, error) {
	if q.Kind != entity.KindMultiChoice {
		return "", errStale
	}

	opt, err := optionAt(q, arg)
	if err != nil {
		return "", err
	}

	var selected bool
	draft, err := h.StateManager.Update(ctx, msg.UserID, func(d *state.StateData) error {
		if d.QuestionID != q.ID {
			return errStale
		}
		selected = d.Toggle(opt.Value)
		return nil
	})
	if err != nil {
		return "", err
	}

	if err := h.Sender.EditKeyboard(msg.ChatID, msg.MessageID, h.Keyboard.QuestionKeyboard(q, 0, draft.Selected)); err != nil {
		ctxzap.Warn(ctx, "failed to refresh multi choice keyboard", zap.Error(err))
	}

	if selected {
		return render.ToastSelected, nil
	}
	return render.ToastUnselected, nil
}

func (h *CallbackHandler) handleSlider(ctx context.Context, msg *Message, q *entity.QuestionDefinition, arg string) error {
	if q.Kind != entity.KindSlider {
		return errStale
	}

	delta, err := strconv.Atoi(arg)
	if err != nil {
		return errStale
	}

	lo, hi := quiz.SliderBounds(q)
	var before int
	draft, err := h.StateManager.Update(ctx, msg.UserID, func(d *state.StateData) error {
		if d.QuestionID != q.ID {
			return errStale
		}
		before = d.SliderValue
		d.SliderValue = clamp(d.SliderValue+delta, lo, hi)
		return nil
	})
	if err != nil {
		return err
	}

	// Telegram rejects edits that change nothing
	if draft.SliderValue == before {
		return nil
	}

	entry := entity.ChatEntry{Text: draft.WidgetText, Question: q}
	err = h.Sender.EditText(msg.ChatID, msg.MessageID,
		render.RenderEntry(entry, draft.SliderValue),
		h.Keyboard.QuestionKeyboard(q, draft.SliderValue, nil),
	)
	if err != nil {
		ctxzap.Warn(ctx, "failed to refresh slider", zap.Error(err))
	}
	return nil
}

func clamp(v int, lo, hi float64) int {
	return int(math.Max(math.Ceil(lo), math.Min(math.Floor(hi), float64(v))))
}

func (h *CallbackHandler) handleSubmit(ctx context.Context, msg *Message, sessionID string, q *entity.QuestionDefinition) error {
	session, err := h.StateManager.GetSession(ctx, msg.UserID)
	if err != nil {
		return err
	}

	draft := session.StateData
	if draft.QuestionID != q.ID {
		return errStale
	}

	var value entity.AnswerValue
	switch q.Kind {
	case entity.KindMultiChoice:
		value = entity.MultiChoiceAnswer(draft.Selected...)
	case entity.KindSlider:
		value = entity.NumberAnswer(float64(draft.SliderValue))
	default:
		return errStale
	}

	h.submit(ctx, msg, sessionID, q, value, msg.MessageID)
	return nil
}

// submit sends an answer and reports whether it was accepted. Rejections
// are explained to the user and leave the widget in place.
func (h *CallbackHandler) submit(ctx context.Context, msg *Message, sessionID string, q *entity.QuestionDefinition, value entity.AnswerValue, widgetMessageID int) bool {
	_, err := h.SessionUC.SubmitAnswerValue(ctx, sessionID, value)

	var invalid *entity.InvalidAnswerError
	switch {
	case errors.As(err, &invalid):
		ctxzap.Info(ctx, "answer rejected",
			zap.String("question_id", invalid.QuestionID),
			zap.String("reason", string(invalid.Reason)),
		)
		h.sendMessage(msg.ChatID, render.RenderInvalidAnswer(q, invalid), nil)
		return false
	case err != nil:
		h.HandleError(ctx, msg.ChatID, err)
		return false
	}

	h.submitted(ctx, msg, widgetMessageID)
	return true
}

func (h *CallbackHandler) handleHelp(ctx context.Context, msg *Message, sessionID string) error {
	if _, err := h.SessionUC.SubmitMessage(ctx, sessionID, "help"); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}
	h.Sender.Typing(msg.ChatID)
	return nil
}

func (h *CallbackHandler) handleDownload(ctx context.Context, msg *Message, format string) error {
	sessionID, ok := h.activeSession(ctx, msg)
	if !ok {
		return nil
	}

	resultFormat := entity.ResultFormat(format)
	if !resultFormat.IsValid() {
		ctxzap.Warn(ctx, "invalid download format parameter", zap.String("format", format))
		h.sendMessage(msg.ChatID, render.ErrGeneric, nil)
		return nil
	}

	result, err := h.SessionUC.ExportResult(ctx, sessionID, resultFormat)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	if err := h.Sender.SendDocument(msg.ChatID, result.Filename, result.Data); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
	}
	return nil
}

func (h *CallbackHandler) handleConfirmation(ctx context.Context, msg *Message, value string) error {
	h.Sender.RemoveKeyboard(msg.ChatID, msg.MessageID)

	switch value {
	case "cancel":
		return cancelSession(ctx, &h.BaseHandler, msg)

	case "continue":
		_, err := h.StateManager.Update(ctx, msg.UserID, func(d *state.StateData) error {
			d.PendingConfirmation = ""
			return nil
		})
		if err != nil && !errors.Is(err, state.ErrNotFound) {
			return err
		}
		h.sendMessage(msg.ChatID, render.MsgCancelAborted, nil)
		return nil

	default:
		return fmt.Errorf("unknown confirmation value: %s", value)
	}
}

// cancelSession drops the session of a user once the cancellation has been
// confirmed.
func cancelSession(ctx context.Context, h *BaseHandler, msg *Message) error {
	session, err := h.StateManager.GetSession(ctx, msg.UserID)
	if errors.Is(err, state.ErrNotFound) || (err == nil && session.StateData.PendingConfirmation != "cancel") {
		h.sendMessage(msg.ChatID, render.ErrNoSession, nil)
		return nil
	}
	if err != nil {
		return err
	}

	if err := h.SessionUC.CancelSession(ctx, session.SessionID); err != nil && !errors.Is(err, entity.ErrSessionNotFound) {
		ctxzap.Error(ctx, "failed to cancel session",
			zap.Error(err),
			zap.String("session_id", session.SessionID),
		)
	}

	if err := h.StateManager.DeleteSession(ctx, msg.UserID); err != nil {
		return err
	}

	h.Sender.RemoveKeyboard(msg.ChatID, session.StateData.WidgetMessageID)
	h.sendMessage(msg.ChatID, render.MsgSessionCanceled, nil)
	return nil
}
