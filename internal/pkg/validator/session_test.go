package validator

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/futig/quiz-chat/internal/config"
	"github.com/futig/quiz-chat/internal/entity"
)

func newTestValidator() *Validator {
	return NewValidator(config.QuizConfig{MaxMessageLength: 10})
}

func TestValidateStartSession(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateStartSession(&entity.StartSessionRequest{}))
	assert.NoError(t, v.ValidateStartSession(&entity.StartSessionRequest{CallbackURL: "https://example.com/hook"}))
	assert.ErrorIs(t, v.ValidateStartSession(&entity.StartSessionRequest{CallbackURL: "example.com/hook"}), entity.ErrInvalidFormat)
	assert.ErrorIs(t, v.ValidateStartSession(&entity.StartSessionRequest{CallbackURL: "ftp://example.com"}), entity.ErrInvalidFormat)
}

func TestValidateSubmitAnswer(t *testing.T) {
	v := newTestValidator()

	assert.ErrorIs(t, v.ValidateSubmitAnswer(&entity.SubmitAnswerRequest{}), entity.ErrMissingField)
	assert.NoError(t, v.ValidateSubmitAnswer(&entity.SubmitAnswerRequest{Value: json.RawMessage(`42`)}))
}

func TestValidateSubmitMessage(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateSubmitMessage(&entity.SubmitMessageRequest{Text: "help"}))
	assert.ErrorIs(t, v.ValidateSubmitMessage(&entity.SubmitMessageRequest{Text: "   "}), entity.ErrMissingField)
	assert.ErrorIs(t, v.ValidateSubmitMessage(&entity.SubmitMessageRequest{Text: strings.Repeat("a", 11)}), entity.ErrInvalidParameter)
	assert.NoError(t, v.ValidateSubmitMessage(&entity.SubmitMessageRequest{Text: strings.Repeat("ё", 10)}))
}

func TestParseResultFormat(t *testing.T) {
	v := newTestValidator()

	tests := map[string]entity.ResultFormat{
		"":         entity.FormatMarkdown,
		"md":       entity.FormatMarkdown,
		"markdown": entity.FormatMarkdown,
		"PDF":      entity.FormatPDF,
		"docx":     entity.FormatDOCX,
	}
	for raw, want := range tests {
		got, err := v.ParseResultFormat(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := v.ParseResultFormat("xlsx")
	assert.ErrorIs(t, err, entity.ErrUnsupportedFormat)
}
