package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/futig/quiz-chat/internal/entity"
)

func TestResponderReply(t *testing.T) {
	r := NewResponder()
	g := ReferenceGraph()
	age, _ := g.Question("age")
	activity, _ := g.Question("activity")

	tests := []struct {
		name    string
		text    string
		current *entity.QuestionDefinition
		want    string
	}{
		{name: "help on age", text: "help", current: age, want: defaultExplanations["age"]},
		{name: "case insensitive", text: "Can you EXPLAIN this?", current: age, want: defaultExplanations["age"]},
		{name: "help on unmapped question", text: "help me", current: activity, want: replyHelpFallback},
		{name: "help without question", text: "help", current: nil, want: replyHelpFallback},
		{name: "no trigger", text: "hello there", current: age, want: replyAcknowledge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Reply(tt.text, tt.current))
		})
	}
}

func TestCustomResponder(t *testing.T) {
	r := NewCustomResponder(map[string]string{"smoker": "Smoking changes the advice we give."})

	assert.Equal(t, "Smoking changes the advice we give.", r.Reply("help", &entity.QuestionDefinition{ID: "smoker"}))
	assert.Equal(t, replyHelpFallback, r.Reply("help", &entity.QuestionDefinition{ID: "age"}))
}
