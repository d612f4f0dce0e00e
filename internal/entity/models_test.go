package entity

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessor(t *testing.T) {
	term := Terminal()
	assert.True(t, term.IsTerminal())
	assert.Empty(t, term.Resolve(NumberAnswer(1)))
	assert.Nil(t, term.Targets())
	assert.Equal(t, CompleteID, term.String())

	// "complete" is the sentinel, not a question
	assert.True(t, Fixed(CompleteID).IsTerminal())

	fixed := Fixed("weight")
	assert.False(t, fixed.IsTerminal())
	assert.False(t, fixed.IsComputed())
	assert.Equal(t, "weight", fixed.Resolve(NumberAnswer(30)))
	assert.Equal(t, []string{"weight"}, fixed.Targets())

	branch := Computed(func(a AnswerValue) string {
		if a.Number() >= 65 {
			return "senior"
		}
		return CompleteID
	}, "senior", CompleteID)
	assert.True(t, branch.IsComputed())
	assert.Equal(t, "senior", branch.Resolve(NumberAnswer(70)))
	assert.Empty(t, branch.Resolve(NumberAnswer(20)))
	assert.Equal(t, []string{"senior"}, branch.Targets())
	assert.Equal(t, "computed[senior]", branch.String())
}

func TestMultiChoiceComparesAsSet(t *testing.T) {
	a := MultiChoiceAnswer("a", "b")
	b := MultiChoiceAnswer("b", "a", "a")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(MultiChoiceAnswer("a")))
	assert.False(t, ChoiceAnswer("a").Equal(TextAnswer("a")))
}

func TestAnswerAccessorsIgnoreOtherVariants(t *testing.T) {
	n := NumberAnswer(42)
	assert.Empty(t, n.Text())
	assert.Empty(t, n.Choice())
	assert.Nil(t, n.Choices())
	assert.Equal(t, "42", n.String())
	assert.True(t, AnswerValue{}.IsZero())

	m := MultiChoiceAnswer("x")
	choices := m.Choices()
	choices[0] = "y"
	assert.Equal(t, []string{"x"}, m.Choices())
}

func TestAnswerJSONKeepsVariant(t *testing.T) {
	in := map[string]AnswerValue{
		"age":       NumberAnswer(35),
		"activity":  ChoiceAnswer("moderate"),
		"nutrition": MultiChoiceAnswer("energy", "weight"),
		"goals":     TextAnswer("Sleep better"),
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"age":{"type":"number","value":35}`)

	var out map[string]AnswerValue
	require.NoError(t, json.Unmarshal(data, &out))
	for id, want := range in {
		assert.True(t, want.Equal(out[id]), id)
		assert.Equal(t, want.Type(), out[id].Type(), id)
	}

	var bad AnswerValue
	assert.Error(t, json.Unmarshal([]byte(`{"type":"date","value":"x"}`), &bad))
}

func TestSessionStatus(t *testing.T) {
	s := SessionState{}
	assert.Equal(t, SessionStatusStarting, s.Status())

	s.CurrentQuestionID = "age"
	assert.Equal(t, SessionStatusInProgress, s.Status())

	s.CurrentQuestionID = ""
	s.Complete = true
	assert.Equal(t, SessionStatusCompleted, s.Status())
}

func TestGraphErrorMatchesCauses(t *testing.T) {
	var ge GraphError
	assert.False(t, ge.HasProblems())

	ge.AddProblem(ErrUnknownSuccessor, "question %q points to %q", "age", "height")
	require.True(t, ge.HasProblems())

	var err error = &ge
	assert.ErrorIs(t, err, ErrInvalidGraph)
	assert.ErrorIs(t, err, ErrUnknownSuccessor)
	assert.True(t, strings.Contains(err.Error(), `"height"`))
}

func TestInvalidAnswerError(t *testing.T) {
	err := &InvalidAnswerError{QuestionID: "age", Reason: ReasonOutOfRange, Detail: "between 18 and 100"}
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	assert.Equal(t, `invalid answer for "age": out_of_range: between 18 and 100`, err.Error())
}
