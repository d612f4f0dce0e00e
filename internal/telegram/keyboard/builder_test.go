package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/quiz"
)

func question(t *testing.T, id string) *entity.QuestionDefinition {
	t.Helper()
	q, ok := quiz.ReferenceGraph().Question(id)
	require.True(t, ok)
	return q
}

func callbacks(markup [][]string) []string {
	var out []string
	for _, row := range markup {
		out = append(out, row...)
	}
	return out
}

func data(t *testing.T, q *entity.QuestionDefinition, slider int, selected []string) ([][]string, [][]string) {
	t.Helper()
	kb := NewBuilder().QuestionKeyboard(q, slider, selected)

	var texts, datas [][]string
	for _, row := range kb.InlineKeyboard {
		var rt, rd []string
		for _, btn := range row {
			require.NotNil(t, btn.CallbackData)
			rt = append(rt, btn.Text)
			rd = append(rd, *btn.CallbackData)
		}
		texts = append(texts, rt)
		datas = append(datas, rd)
	}
	return texts, datas
}

func TestSingleChoiceKeyboard(t *testing.T) {
	q := question(t, "activity")
	texts, datas := data(t, q, 0, nil)

	require.Len(t, texts, len(q.Options)+1)
	assert.Equal(t, []string{q.Options[0].Label}, texts[0])
	assert.Equal(t, []string{"opt:activity:0"}, datas[0])
	assert.Equal(t, []string{BtnHelp}, texts[len(texts)-1])
	assert.Equal(t, []string{"help:activity"}, datas[len(datas)-1])
}

func TestMultiChoiceKeyboardMarksSelection(t *testing.T) {
	q := question(t, "nutrition")
	texts, datas := data(t, q, 0, []string{"energy"})

	require.Len(t, texts, len(q.Options)+2)
	assert.Equal(t, "⬜ Weight loss", texts[0][0])
	assert.Equal(t, "✅ Increased energy", texts[2][0])
	assert.Equal(t, "tgl:nutrition:2", datas[2][0])
	assert.Equal(t, []string{"done:nutrition"}, datas[len(q.Options)])
}

func TestSliderKeyboard(t *testing.T) {
	q := question(t, "age")
	texts, datas := data(t, q, 59, nil)

	require.Len(t, texts, 3)
	assert.Equal(t, []string{"-10", "-1", "+1", "+10"}, texts[0])
	assert.Equal(t, []string{"sl:age:-10", "sl:age:-1", "sl:age:1", "sl:age:10"}, datas[0])
	assert.Equal(t, BtnContinue+" (59)", texts[1][0])
	assert.Equal(t, "done:age", datas[1][0])
}

func TestTypedQuestionsOnlyOfferHelp(t *testing.T) {
	for _, id := range []string{"weight", "goals"} {
		_, datas := data(t, question(t, id), 0, nil)
		assert.Equal(t, []string{"help:" + id}, callbacks(datas), id)
	}
}

func TestQuestionRefRoundTrip(t *testing.T) {
	ids := []string{
		"activity",
		"section:1",
		"#tagged",
		"a_really_long_question_identifier_that_keeps_going_and_going",
	}

	for _, id := range ids {
		q := &entity.QuestionDefinition{
			ID:   id,
			Kind: entity.KindSingleChoice,
			Options: []entity.Option{
				{ID: "x", Label: "X", Value: "x"},
				{ID: "y", Label: "Y", Value: "y"},
			},
		}
		_, datas := data(t, q, 0, nil)

		cb, err := ParseCallback(datas[1][0])
		require.NoError(t, err, id)
		assert.LessOrEqual(t, len(datas[1][0]), maxCallbackBytes, id)
		assert.Equal(t, ActionOption, cb.Action, id)
		assert.True(t, cb.IsFor(id), id)
		assert.False(t, cb.IsFor(id+"_other"), id)

		_, arg := cb.Question()
		assert.Equal(t, "1", arg, id)

		help, err := ParseCallback(datas[len(datas)-1][0])
		require.NoError(t, err, id)
		assert.True(t, help.IsFor(id), id)
	}
}

func TestQuestionRefKeepsPlainIDs(t *testing.T) {
	assert.Equal(t, "nutrition", QuestionRef("nutrition"))
	assert.NotEqual(t, "section:1", QuestionRef("section:1"))
	assert.NotContains(t, QuestionRef("section:1"), ":")
	assert.NotEqual(t, QuestionRef("section:1"), QuestionRef("section:2"))
}

func TestParseCallback(t *testing.T) {
	cb, err := ParseCallback("tgl:nutrition:2")
	require.NoError(t, err)
	assert.Equal(t, ActionToggle, cb.Action)

	qid, arg := cb.Question()
	assert.Equal(t, "nutrition", qid)
	assert.Equal(t, "2", arg)

	cb, err = ParseCallback("dl:pdf")
	require.NoError(t, err)
	assert.Equal(t, ActionDownload, cb.Action)
	assert.Equal(t, "pdf", cb.Value)

	_, err = ParseCallback("garbage")
	assert.Error(t, err)
}
