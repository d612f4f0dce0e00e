package quiz

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/futig/quiz-chat/internal/entity"
)

// Slider bounds used when a slider question carries no explicit range.
const (
	DefaultSliderMin = 18
	DefaultSliderMax = 100
)

// ValidateAnswer checks value against the rules of q and returns the coerced
// value that should be recorded.
func ValidateAnswer(q *entity.QuestionDefinition, value entity.AnswerValue) (entity.AnswerValue, error) {
	switch q.Kind {
	case entity.KindSlider:
		return validateSlider(q, value)
	case entity.KindNumber:
		return validateNumber(q, value)
	case entity.KindText:
		return validateText(q, value)
	case entity.KindSingleChoice:
		return validateSingleChoice(q, value)
	case entity.KindMultiChoice:
		return validateMultiChoice(q, value)
	default:
		return entity.AnswerValue{}, invalid(q, entity.ReasonKindMismatch, "unsupported question kind %q", q.Kind)
	}
}

// SliderBounds returns the inclusive range of a slider question.
func SliderBounds(q *entity.QuestionDefinition) (float64, float64) {
	lo, hi := float64(DefaultSliderMin), float64(DefaultSliderMax)
	if q.Validation != nil {
		if q.Validation.Min != nil {
			lo = *q.Validation.Min
		}
		if q.Validation.Max != nil {
			hi = *q.Validation.Max
		}
	}
	return lo, hi
}

// SliderStart is the value a slider widget shows before the user moves it.
func SliderStart(q *entity.QuestionDefinition) int {
	lo, hi := SliderBounds(q)
	return int(math.Floor((lo + hi) / 2))
}

// ParseNumber parses a typed number. Both "," and "." are accepted as the
// decimal separator.
func ParseNumber(input string) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, fmt.Errorf("%w: empty number", entity.ErrInvalidFormat)
	}

	s = strings.Replace(s, ",", ".", 1)
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", entity.ErrInvalidFormat, input)
	}
	return n, nil
}

func validateSlider(q *entity.QuestionDefinition, value entity.AnswerValue) (entity.AnswerValue, error) {
	n, err := numberOf(q, value)
	if err != nil {
		return entity.AnswerValue{}, err
	}

	// bounds apply to the value as submitted, before rounding
	lo, hi := SliderBounds(q)
	if n < lo || n > hi {
		return entity.AnswerValue{}, invalid(q, entity.ReasonOutOfRange, "%v is outside [%v, %v]", n, lo, hi)
	}

	return entity.NumberAnswer(math.Round(n)), nil
}

func validateNumber(q *entity.QuestionDefinition, value entity.AnswerValue) (entity.AnswerValue, error) {
	n, err := numberOf(q, value)
	if err != nil {
		return entity.AnswerValue{}, err
	}

	if v := q.Validation; v != nil {
		if v.Min != nil && n < *v.Min {
			return entity.AnswerValue{}, invalid(q, entity.ReasonOutOfRange, "%v is below the minimum %v", n, *v.Min)
		}
		if v.Max != nil && n > *v.Max {
			return entity.AnswerValue{}, invalid(q, entity.ReasonOutOfRange, "%v is above the maximum %v", n, *v.Max)
		}
	}

	return entity.NumberAnswer(n), nil
}

func numberOf(q *entity.QuestionDefinition, value entity.AnswerValue) (float64, error) {
	switch value.Type() {
	case entity.AnswerTypeNumber:
		n := value.Number()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, invalid(q, entity.ReasonUnparseable, "number is not finite")
		}
		return n, nil
	case entity.AnswerTypeText:
		text := strings.TrimSpace(value.Text())
		if text == "" && q.Required() {
			return 0, invalid(q, entity.ReasonRequired, "a number is required")
		}
		n, err := ParseNumber(text)
		if err != nil {
			return 0, invalid(q, entity.ReasonUnparseable, "%q is not a number", value.Text())
		}
		return n, nil
	default:
		return 0, invalid(q, entity.ReasonKindMismatch, "expected a number, got %s", describe(value))
	}
}

func validateText(q *entity.QuestionDefinition, value entity.AnswerValue) (entity.AnswerValue, error) {
	if value.Type() != entity.AnswerTypeText {
		return entity.AnswerValue{}, invalid(q, entity.ReasonKindMismatch, "expected text, got %s", describe(value))
	}

	text := strings.TrimSpace(value.Text())
	if text == "" && q.Required() {
		return entity.AnswerValue{}, invalid(q, entity.ReasonRequired, "an answer is required")
	}

	return entity.TextAnswer(text), nil
}

func validateSingleChoice(q *entity.QuestionDefinition, value entity.AnswerValue) (entity.AnswerValue, error) {
	var selected string
	switch value.Type() {
	case entity.AnswerTypeChoice:
		selected = value.Choice()
	case entity.AnswerTypeText:
		selected = value.Text()
	default:
		return entity.AnswerValue{}, invalid(q, entity.ReasonKindMismatch, "expected a single choice, got %s", describe(value))
	}

	if selected == "" {
		return entity.AnswerValue{}, invalid(q, entity.ReasonRequired, "an option must be selected")
	}

	if _, ok := q.OptionByValue(selected); !ok {
		return entity.AnswerValue{}, invalid(q, entity.ReasonUnknownOption, "%q is not an option", selected)
	}

	return entity.ChoiceAnswer(selected), nil
}

func validateMultiChoice(q *entity.QuestionDefinition, value entity.AnswerValue) (entity.AnswerValue, error) {
	if value.Type() != entity.AnswerTypeMultiChoice {
		return entity.AnswerValue{}, invalid(q, entity.ReasonKindMismatch, "expected a multiple choice, got %s", describe(value))
	}

	chosen := make(map[string]bool)
	for _, v := range value.Choices() {
		if _, ok := q.OptionByValue(v); !ok {
			return entity.AnswerValue{}, invalid(q, entity.ReasonUnknownOption, "%q is not an option", v)
		}
		chosen[v] = true
	}

	if len(chosen) == 0 && q.Required() {
		return entity.AnswerValue{}, invalid(q, entity.ReasonRequired, "at least one option must be selected")
	}

	// Option order keeps the stored selection independent of click order.
	ordered := make([]string, 0, len(chosen))
	for _, opt := range q.Options {
		if chosen[opt.Value] {
			ordered = append(ordered, opt.Value)
		}
	}

	return entity.MultiChoiceAnswer(ordered...), nil
}

func invalid(q *entity.QuestionDefinition, reason entity.InvalidAnswerReason, format string, args ...any) error {
	return &entity.InvalidAnswerError{
		QuestionID: q.ID,
		Reason:     reason,
		Detail:     fmt.Sprintf(format, args...),
	}
}

func describe(value entity.AnswerValue) string {
	if value.IsZero() {
		return "nothing"
	}
	return string(value.Type())
}

// AnswerFromInput converts loosely typed input, as decoded from JSON, into the
// answer variant matching the question kind. Numbers may arrive as strings and
// single choices as plain strings.
func AnswerFromInput(q *entity.QuestionDefinition, raw any) (entity.AnswerValue, error) {
	switch v := raw.(type) {
	case nil:
		switch q.Kind {
		case entity.KindMultiChoice:
			return entity.MultiChoiceAnswer(), nil
		case entity.KindSingleChoice:
			return entity.ChoiceAnswer(""), nil
		default:
			return entity.TextAnswer(""), nil
		}
	case float64:
		if q.Kind.IsNumeric() {
			return entity.NumberAnswer(v), nil
		}
		return entity.AnswerValue{}, invalid(q, entity.ReasonKindMismatch, "unexpected number for a %s question", q.Kind)
	case int:
		return AnswerFromInput(q, float64(v))
	case string:
		switch q.Kind {
		case entity.KindSingleChoice:
			return entity.ChoiceAnswer(v), nil
		case entity.KindMultiChoice:
			return entity.MultiChoiceAnswer(v), nil
		default:
			return entity.TextAnswer(v), nil
		}
	case []string:
		if q.Kind == entity.KindMultiChoice {
			return entity.MultiChoiceAnswer(v...), nil
		}
	case []any:
		if q.Kind == entity.KindMultiChoice {
			values := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return entity.AnswerValue{}, invalid(q, entity.ReasonKindMismatch, "selection items must be strings")
				}
				values = append(values, s)
			}
			return entity.MultiChoiceAnswer(values...), nil
		}
	}

	return entity.AnswerValue{}, invalid(q, entity.ReasonKindMismatch, "unexpected %T for a %s question", raw, q.Kind)
}
