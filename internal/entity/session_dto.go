package entity

import (
	"encoding/json"
	"time"
)

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

type StartSessionRequest struct {
	CallbackURL string `json:"callback_url,omitempty"`
}

// SubmitAnswerRequest carries a loosely typed value: a string, a number or a
// list of strings depending on the question kind.
type SubmitAnswerRequest struct {
	Value json.RawMessage `json:"value"`
}

type SubmitMessageRequest struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	Reason     string `json:"reason,omitempty"`
	QuestionID string `json:"question_id,omitempty"`
}

type OptionDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type ValidationDTO struct {
	Required bool     `json:"required"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

type QuestionDTO struct {
	ID          string         `json:"id"`
	Kind        QuestionKind   `json:"kind"`
	Prompt      string         `json:"prompt"`
	Description string         `json:"description,omitempty"`
	Options     []OptionDTO    `json:"options,omitempty"`
	Validation  *ValidationDTO `json:"validation,omitempty"`
	Next        []string       `json:"next,omitempty"`
}

type ChatEntryDTO struct {
	ID        uint64       `json:"id"`
	Author    Author       `json:"author"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"created_at"`
	Question  *QuestionDTO `json:"question,omitempty"`
}

type SessionDTO struct {
	ID                string                 `json:"session_id"`
	Status            SessionStatus          `json:"session_status"`
	CurrentQuestionID *string                `json:"current_question_id,omitempty"`
	CurrentQuestion   *QuestionDTO           `json:"current_question,omitempty"`
	Answers           map[string]AnswerValue `json:"answers"`
	Transcript        []ChatEntryDTO         `json:"transcript"`
	Complete          bool                   `json:"complete"`
	Typing            bool                   `json:"typing"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

type QuestionGraphDTO struct {
	Start     string        `json:"start"`
	Questions []QuestionDTO `json:"questions"`
}

// Session is a live questionnaire session as seen by the presentation layers.
type Session struct {
	ID          string
	CallbackURL string
	State       SessionState
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
