package quiz

import (
	"strings"

	"github.com/futig/quiz-chat/internal/entity"
)

// NoneSelected stands for an empty optional multi-choice answer
const NoneSelected = "None"

// FormatAnswer renders the transcript text of the user's answer.
func FormatAnswer(q *entity.QuestionDefinition, value entity.AnswerValue) string {
	switch {
	case q.Kind.IsChoice():
		var values []string
		if q.Kind == entity.KindMultiChoice {
			values = value.Choices()
		} else {
			values = []string{value.Choice()}
		}

		labels := make([]string, 0, len(values))
		for _, v := range values {
			if opt, ok := q.OptionByValue(v); ok {
				labels = append(labels, opt.Label)
			} else {
				labels = append(labels, v)
			}
		}
		if len(labels) == 0 {
			return "Selected: " + NoneSelected
		}
		return "Selected: " + strings.Join(labels, ", ")

	case q.Kind.IsNumeric():
		label := q.Label
		if label == "" {
			label = "Value"
		}
		return label + ": " + value.String()

	default:
		return strings.TrimSpace(value.Text())
	}
}
