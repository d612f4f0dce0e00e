package entity

import (
	"fmt"
	"time"
)

// CompleteID is the successor id that terminates a questionnaire.
const CompleteID = "complete"

type QuestionKind string

const (
	KindSingleChoice QuestionKind = "single_choice"
	KindMultiChoice  QuestionKind = "multi_choice"
	KindText         QuestionKind = "text"
	KindNumber       QuestionKind = "number"
	KindSlider       QuestionKind = "slider"
)

func (k QuestionKind) Validate() error {
	switch k {
	case KindSingleChoice, KindMultiChoice, KindText, KindNumber, KindSlider:
		return nil
	default:
		return fmt.Errorf("unknown question kind: %s", k)
	}
}

// IsChoice reports whether answers of this kind are picked from options.
func (k QuestionKind) IsChoice() bool {
	return k == KindSingleChoice || k == KindMultiChoice
}

// IsNumeric reports whether answers of this kind are numbers.
func (k QuestionKind) IsNumeric() bool {
	return k == KindNumber || k == KindSlider
}

type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Validation holds the answer rules of a question. Min and Max are optional
// independently of each other.
type Validation struct {
	Required bool     `json:"required,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// Bound is a helper for building Validation literals.
func Bound(v float64) *float64 {
	return &v
}

type successorKind int

const (
	successorTerminal successorKind = iota
	successorFixed
	successorComputed
)

// Successor decides which question follows an answer. The zero value
// terminates the flow.
type Successor struct {
	kind    successorKind
	target  string
	compute func(AnswerValue) string
	targets []string
}

// Terminal ends the questionnaire after the answer.
func Terminal() Successor {
	return Successor{}
}

// Fixed always continues with the question id.
func Fixed(id string) Successor {
	if id == "" || id == CompleteID {
		return Terminal()
	}
	return Successor{kind: successorFixed, target: id}
}

// Computed continues with whatever fn returns for the submitted answer.
// targets lists every id fn may return so the graph can be checked up front.
func Computed(fn func(AnswerValue) string, targets ...string) Successor {
	return Successor{
		kind:    successorComputed,
		compute: fn,
		targets: append([]string(nil), targets...),
	}
}

// Resolve returns the next question id, or "" when the flow ends.
func (s Successor) Resolve(answer AnswerValue) string {
	var next string
	switch s.kind {
	case successorFixed:
		next = s.target
	case successorComputed:
		if s.compute != nil {
			next = s.compute(answer)
		}
	}

	if next == CompleteID {
		return ""
	}
	return next
}

// Targets lists the question ids this successor can lead to, excluding the
// terminal sentinel.
func (s Successor) Targets() []string {
	switch s.kind {
	case successorFixed:
		return []string{s.target}
	case successorComputed:
		out := make([]string, 0, len(s.targets))
		for _, t := range s.targets {
			if t != "" && t != CompleteID {
				out = append(out, t)
			}
		}
		return out
	default:
		return nil
	}
}

func (s Successor) IsTerminal() bool {
	return s.kind == successorTerminal
}

func (s Successor) IsComputed() bool {
	return s.kind == successorComputed
}

// String renders the successor for logs and API output.
func (s Successor) String() string {
	switch s.kind {
	case successorFixed:
		return s.target
	case successorComputed:
		return fmt.Sprintf("computed%v", s.Targets())
	default:
		return CompleteID
	}
}

// QuestionDefinition is immutable once the graph is built.
type QuestionDefinition struct {
	ID          string
	Kind        QuestionKind
	Prompt      string
	Description string
	// Label prefixes numeric and text answers in the transcript, e.g. "Age".
	Label      string
	Options    []Option
	Validation *Validation
	Next       Successor
}

// OptionByValue finds the option carrying value.
func (q *QuestionDefinition) OptionByValue(value string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// OptionByID finds the option with the given id.
func (q *QuestionDefinition) OptionByID(id string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Required reports whether an empty answer is rejected.
func (q *QuestionDefinition) Required() bool {
	return q.Validation != nil && q.Validation.Required
}

type SessionStatus string

const (
	SessionStatusStarting   SessionStatus = "STARTING"    // Welcome sent, first question pending
	SessionStatusInProgress SessionStatus = "IN_PROGRESS" // A question is waiting for an answer
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// AssessmentResult is the archived form of a completed session.
type AssessmentResult struct {
	SessionID   string                 `json:"session_id"`
	Answers     map[string]AnswerValue `json:"answers"`
	Transcript  []ChatEntry            `json:"transcript"`
	CompletedAt time.Time              `json:"completed_at"`
}
