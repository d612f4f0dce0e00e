package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/quiz"
)

const (
	MsgStart = `👋 Hi! I'm your health assessment assistant.

I'll ask a few short questions about you and your habits. Tap the buttons or type your answers.`

	MsgHelp = `🤖 Bot commands:

/start - Start a new assessment
/ask <text> - Ask me something without answering the question
/cancel - Cancel the current assessment
/help - Show this help

Buttons answer choice questions and move sliders. For text and number questions just type your answer.`

	MsgConfirmCancel   = `⚠️ Are you sure? Your answers so far will be lost.`
	MsgSessionCanceled = `👋 Assessment canceled.

Send /start to begin a new one.`
	MsgCancelAborted = `👍 Let's continue.`
	MsgResultReady   = `✅ Your assessment is complete. You can download it:`
	MsgAskUsage      = `Usage: /ask <your question>`
	MsgPreparingFile = `⏳ Preparing your file...`

	// Callback toasts
	ToastStale      = "This question is no longer active"
	ToastSelected   = "Selected"
	ToastUnselected = "Removed"

	// Errors
	ErrGeneric            = `❌ Something went wrong. Please try again or send /start`
	ErrNoSession          = `❌ No active assessment. Send /start to begin.`
	ErrSessionNotFound    = `❌ Your assessment has expired. Send /start to begin a new one.`
	ErrSessionCompleted   = `✅ This assessment is already complete. Send /start to begin a new one.`
	ErrNotCompleted       = `⏳ The assessment is not complete yet.`
	ErrWaitForQuestion    = `⏳ Please wait for the next question.`
	ErrNetworkIssue       = `❌ Connection problem. Please try again a bit later.`
	ErrTimeout            = `❌ That took too long. Please try again.`
	ErrUnknownCommand     = `❌ Unknown command. Send /help for the list of commands.`
	ErrRateLimited        = `⚠️ Too many requests. Please slow down a little.`
	ErrUnsupportedMessage = `❌ I can only read text messages.`
)

// RenderEntry formats a system transcript entry. Entries carrying a question
// get the question description and, for sliders, the current value.
func RenderEntry(entry entity.ChatEntry, sliderValue int) string {
	q := entry.Question
	if q == nil {
		return entry.Text
	}

	var sb strings.Builder
	sb.WriteString(entry.Text)

	if q.Description != "" {
		sb.WriteString("\n\n")
		sb.WriteString(q.Description)
	}

	switch q.Kind {
	case entity.KindSlider:
		sb.WriteString("\n\n")
		sb.WriteString(RenderSliderValue(q, sliderValue))
	case entity.KindNumber, entity.KindText:
		sb.WriteString("\n\n✍️ Type your answer.")
	case entity.KindMultiChoice:
		sb.WriteString("\n\nSelect all that apply, then tap Continue.")
	}

	return sb.String()
}

// RenderSliderValue shows the slider position and its range
func RenderSliderValue(q *entity.QuestionDefinition, value int) string {
	lo, hi := quiz.SliderBounds(q)
	label := q.Label
	if label == "" {
		label = "Value"
	}
	return fmt.Sprintf("%s: %d (from %g to %g)", label, value, lo, hi)
}

// RenderInvalidAnswer explains why an answer was rejected
func RenderInvalidAnswer(q *entity.QuestionDefinition, err *entity.InvalidAnswerError) string {
	switch err.Reason {
	case entity.ReasonRequired:
		return "❌ This question needs an answer."
	case entity.ReasonUnparseable:
		return "❌ Please enter a number, for example 42 or 42.5."
	case entity.ReasonOutOfRange:
		if q != nil && q.Validation != nil && q.Validation.Min != nil && q.Validation.Max != nil {
			return fmt.Sprintf("❌ Please enter a value between %g and %g.", *q.Validation.Min, *q.Validation.Max)
		}
		return "❌ That value is out of range."
	case entity.ReasonUnknownOption:
		return "❌ Please pick one of the offered options."
	default:
		return "❌ That answer doesn't fit this question. " + err.Detail
	}
}

// ClassifyError analyzes an error and returns an appropriate user-friendly message
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	switch {
	case errors.Is(err, entity.ErrSessionNotFound), errors.Is(err, entity.ErrSessionClosed):
		return ErrSessionNotFound
	case errors.Is(err, entity.ErrSessionCompleted):
		return ErrSessionCompleted
	case errors.Is(err, entity.ErrSessionNotCompleted):
		return ErrNotCompleted
	case errors.Is(err, entity.ErrNoCurrentQuestion):
		return ErrWaitForQuestion
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	return ErrGeneric
}
