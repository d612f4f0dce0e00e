package keyboard

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/quiz-chat/internal/entity"
)

const (
	BtnStart    = "🚀 Start assessment"
	BtnContinue = "Continue ➡️"
	BtnHelp     = "❓ Need help with this question?"
)

// SliderSteps are the adjustments offered around the slider value
var SliderSteps = []int{-10, -1, 1, 10}

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// StartKeyboard creates the initial start button
func (b *Builder) StartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnStart, EncodeCallback(ActionStart, "start")),
		),
	)
}

// QuestionKeyboard renders the answer widget of a question. Text and number
// questions are answered by typing, so they only get the help button.
func (b *Builder) QuestionKeyboard(q *entity.QuestionDefinition, sliderValue int, selected []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	switch q.Kind {
	case entity.KindSingleChoice:
		for i, opt := range q.Options {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(opt.Label, encodeQuestion(ActionOption, q.ID, strconv.Itoa(i))),
			))
		}

	case entity.KindMultiChoice:
		for i, opt := range q.Options {
			mark := "⬜ "
			if contains(selected, opt.Value) {
				mark = "✅ "
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(mark+opt.Label, encodeQuestion(ActionToggle, q.ID, strconv.Itoa(i))),
			))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnContinue, encodeQuestion(ActionSubmit, q.ID)),
		))

	case entity.KindSlider:
		steps := make([]tgbotapi.InlineKeyboardButton, 0, len(SliderSteps))
		for _, step := range SliderSteps {
			steps = append(steps, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%+d", step),
				encodeQuestion(ActionSlider, q.ID, strconv.Itoa(step)),
			))
		}
		rows = append(rows,
			steps,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("%s (%d)", BtnContinue, sliderValue),
					encodeQuestion(ActionSubmit, q.ID),
				),
			),
		)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(BtnHelp, encodeQuestion(ActionHelp, q.ID)),
	))

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ResultKeyboard offers the completed assessment for download
func (b *Builder) ResultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Download .md", EncodeCallback(ActionDownload, string(entity.FormatMarkdown))),
			tgbotapi.NewInlineKeyboardButtonData("📕 Download .pdf", EncodeCallback(ActionDownload, string(entity.FormatPDF))),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Start over", EncodeCallback(ActionStart, "start")),
		),
	)
}

// CancelConfirmKeyboard asks before throwing a session away
func (b *Builder) CancelConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes, cancel", EncodeCallback(ActionConfirm, "cancel")),
			tgbotapi.NewInlineKeyboardButtonData("❌ No, continue", EncodeCallback(ActionConfirm, "continue")),
		),
	)
}

// encodeQuestion builds question-scoped callback data
func encodeQuestion(action, questionID string, args ...string) string {
	return EncodeCallback(action, append([]string{QuestionRef(questionID)}, args...)...)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
