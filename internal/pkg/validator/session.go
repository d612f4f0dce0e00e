package validator

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/futig/quiz-chat/internal/config"
	"github.com/futig/quiz-chat/internal/entity"
)

// Validator checks transport requests before they reach the session use case
type Validator struct {
	cfg config.QuizConfig
}

func NewValidator(cfg config.QuizConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateStartSession validates StartSessionRequest
func (v *Validator) ValidateStartSession(req *entity.StartSessionRequest) error {
	if req.CallbackURL == "" {
		return nil
	}

	u, err := url.Parse(req.CallbackURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: callback_url must be an absolute http(s) URL", entity.ErrInvalidFormat)
	}

	return nil
}

// ValidateSubmitAnswer checks that a value is present. Its shape is checked
// against the current question later.
func (v *Validator) ValidateSubmitAnswer(req *entity.SubmitAnswerRequest) error {
	if len(req.Value) == 0 {
		return fmt.Errorf("%w: value", entity.ErrMissingField)
	}
	return nil
}

// ValidateSubmitMessage validates side-channel messages
func (v *Validator) ValidateSubmitMessage(req *entity.SubmitMessageRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: text", entity.ErrMissingField)
	}

	if n := utf8.RuneCountInString(req.Text); n > v.cfg.MaxMessageLength {
		return fmt.Errorf("%w: text is %d characters (max %d)", entity.ErrInvalidParameter, n, v.cfg.MaxMessageLength)
	}

	return nil
}

// ParseResultFormat maps the format query parameter; markdown is the default.
func (v *Validator) ParseResultFormat(raw string) (entity.ResultFormat, error) {
	if raw == "" {
		return entity.FormatMarkdown, nil
	}

	format := entity.ResultFormat(strings.ToLower(raw))
	if format == "md" {
		format = entity.FormatMarkdown
	}
	if !format.IsValid() {
		return "", fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, raw)
	}
	return format, nil
}
