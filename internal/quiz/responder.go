package quiz

import (
	"strings"

	"github.com/futig/quiz-chat/internal/entity"
)

const (
	replyHelpFallback = "I'm here to help clarify any questions about the health assessment. " +
		"Feel free to ask about any specific terms or why we need certain information."
	replyAcknowledge = "Thanks for your question! I'm here to help you understand any part of the assessment. " +
		"Is there anything specific you'd like me to explain?"
)

var defaultTriggers = []string{"help", "explain"}

var defaultExplanations = map[string]string{
	"age": "Age helps us provide recommendations that are appropriate for your life stage. " +
		"Different age groups have different nutritional needs and health considerations.",
	"conditions": "Medical conditions help us understand any specific health considerations you might have. " +
		"This information is used only to provide more relevant recommendations and is kept completely confidential.",
	"weight": "Weight information helps us calculate appropriate nutritional recommendations and suggest " +
		"realistic health goals. All information is kept private and secure.",
}

// Responder produces canned replies to free-form messages.
type Responder struct {
	triggers     []string
	explanations map[string]string
	fallback     string
	acknowledge  string
}

// NewResponder returns the responder for the reference health questionnaire.
func NewResponder() *Responder {
	return NewCustomResponder(defaultExplanations)
}

// NewCustomResponder uses explanations keyed by question id instead of the
// built-in ones.
func NewCustomResponder(explanations map[string]string) *Responder {
	copied := make(map[string]string, len(explanations))
	for k, v := range explanations {
		copied[k] = v
	}

	return &Responder{
		triggers:     defaultTriggers,
		explanations: copied,
		fallback:     replyHelpFallback,
		acknowledge:  replyAcknowledge,
	}
}

// Reply returns the answer to text given the question currently on screen.
// current may be nil.
func (r *Responder) Reply(text string, current *entity.QuestionDefinition) string {
	if !r.isHelpRequest(text) {
		return r.acknowledge
	}

	if current != nil {
		if explanation, ok := r.explanations[current.ID]; ok {
			return explanation
		}
	}
	return r.fallback
}

func (r *Responder) isHelpRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, trigger := range r.triggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
