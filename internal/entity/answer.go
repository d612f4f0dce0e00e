package entity

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type AnswerType string

const (
	AnswerTypeText        AnswerType = "text"
	AnswerTypeNumber      AnswerType = "number"
	AnswerTypeChoice      AnswerType = "choice"
	AnswerTypeMultiChoice AnswerType = "multi_choice"
)

// AnswerValue is the value submitted for a question. Exactly one variant is
// set; the question kind decides which variant is legal.
type AnswerValue struct {
	typ     AnswerType
	text    string
	number  float64
	choices []string
}

func TextAnswer(s string) AnswerValue {
	return AnswerValue{typ: AnswerTypeText, text: s}
}

func NumberAnswer(n float64) AnswerValue {
	return AnswerValue{typ: AnswerTypeNumber, number: n}
}

func ChoiceAnswer(value string) AnswerValue {
	return AnswerValue{typ: AnswerTypeChoice, text: value}
}

func MultiChoiceAnswer(values ...string) AnswerValue {
	return AnswerValue{typ: AnswerTypeMultiChoice, choices: append([]string{}, values...)}
}

func (a AnswerValue) Type() AnswerType { return a.typ }

// IsZero reports whether no variant is set.
func (a AnswerValue) IsZero() bool { return a.typ == "" }

// Text returns the text of a Text answer.
func (a AnswerValue) Text() string {
	if a.typ == AnswerTypeText {
		return a.text
	}
	return ""
}

func (a AnswerValue) Number() float64 {
	if a.typ == AnswerTypeNumber {
		return a.number
	}
	return 0
}

// Choice returns the selected option value of a Choice answer.
func (a AnswerValue) Choice() string {
	if a.typ == AnswerTypeChoice {
		return a.text
	}
	return ""
}

// Choices returns a copy of the selected option values of a MultiChoice answer.
func (a AnswerValue) Choices() []string {
	if a.typ != AnswerTypeMultiChoice {
		return nil
	}
	return append([]string{}, a.choices...)
}

// Equal compares two answers. Multi-choice selections compare as sets.
func (a AnswerValue) Equal(b AnswerValue) bool {
	if a.typ != b.typ {
		return false
	}

	switch a.typ {
	case AnswerTypeNumber:
		return a.number == b.number
	case AnswerTypeMultiChoice:
		return sameSet(a.choices, b.choices)
	default:
		return a.text == b.text
	}
}

func sameSet(a, b []string) bool {
	left := uniqueSorted(a)
	right := uniqueSorted(b)
	return slices.Equal(left, right)
}

func uniqueSorted(values []string) []string {
	out := append([]string{}, values...)
	slices.Sort(out)
	return slices.Compact(out)
}

func (a AnswerValue) String() string {
	switch a.typ {
	case AnswerTypeNumber:
		return strconv.FormatFloat(a.number, 'f', -1, 64)
	case AnswerTypeMultiChoice:
		return strings.Join(a.choices, ", ")
	default:
		return a.text
	}
}

type answerJSON struct {
	Type  AnswerType      `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (a AnswerValue) MarshalJSON() ([]byte, error) {
	var value any
	switch a.typ {
	case AnswerTypeNumber:
		value = a.number
	case AnswerTypeMultiChoice:
		value = a.Choices()
	case AnswerTypeText, AnswerTypeChoice:
		value = a.text
	default:
		return []byte("null"), nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(answerJSON{Type: a.typ, Value: raw})
}

func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = AnswerValue{}
		return nil
	}

	var aux answerJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch aux.Type {
	case AnswerTypeNumber:
		var n float64
		if err := json.Unmarshal(aux.Value, &n); err != nil {
			return fmt.Errorf("decode number answer: %w", err)
		}
		*a = NumberAnswer(n)
	case AnswerTypeMultiChoice:
		var values []string
		if err := json.Unmarshal(aux.Value, &values); err != nil {
			return fmt.Errorf("decode multi choice answer: %w", err)
		}
		*a = MultiChoiceAnswer(values...)
	case AnswerTypeText, AnswerTypeChoice:
		var s string
		if err := json.Unmarshal(aux.Value, &s); err != nil {
			return fmt.Errorf("decode %s answer: %w", aux.Type, err)
		}
		*a = AnswerValue{typ: aux.Type, text: s}
	default:
		return fmt.Errorf("unknown answer type: %q", aux.Type)
	}

	return nil
}
