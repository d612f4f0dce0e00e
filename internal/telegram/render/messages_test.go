package render

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/quiz"
)

func TestRenderEntry(t *testing.T) {
	g := quiz.ReferenceGraph()
	age, ok := g.Question("age")
	require.True(t, ok)
	weight, ok := g.Question("weight")
	require.True(t, ok)

	plain := RenderEntry(entity.ChatEntry{Text: quiz.WelcomeText}, 0)
	assert.Equal(t, quiz.WelcomeText, plain)

	slider := RenderEntry(entity.ChatEntry{Text: age.Prompt, Question: age}, 59)
	assert.Contains(t, slider, age.Description)
	assert.Contains(t, slider, "Age: 59 (from 18 to 100)")

	typed := RenderEntry(entity.ChatEntry{Text: weight.Prompt, Question: weight}, 0)
	assert.Contains(t, typed, "Type your answer")
}

func TestRenderInvalidAnswer(t *testing.T) {
	weight, _ := quiz.ReferenceGraph().Question("weight")

	msg := RenderInvalidAnswer(weight, &entity.InvalidAnswerError{QuestionID: "weight", Reason: entity.ReasonOutOfRange})
	assert.Equal(t, "❌ Please enter a value between 50 and 500.", msg)

	msg = RenderInvalidAnswer(weight, &entity.InvalidAnswerError{QuestionID: "weight", Reason: entity.ReasonUnparseable})
	assert.Contains(t, msg, "number")
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("lookup: %w", entity.ErrSessionNotFound), ErrSessionNotFound},
		{entity.ErrSessionCompleted, ErrSessionCompleted},
		{entity.ErrNoCurrentQuestion, ErrWaitForQuestion},
		{context.DeadlineExceeded, ErrTimeout},
		{fmt.Errorf("boom"), ErrGeneric},
		{nil, ErrGeneric},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyError(tt.err))
	}
}
