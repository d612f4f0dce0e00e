package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Session errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionCompleted    = errors.New("session is already completed")
	ErrSessionNotCompleted = errors.New("session is not completed")
	ErrSessionClosed       = errors.New("session is closed")
	ErrNoCurrentQuestion   = errors.New("no question is waiting for an answer")
	ErrEmptyMessage        = errors.New("message is empty")
	ErrResultNotFound      = errors.New("assessment result not found")

	// Question graph errors
	ErrInvalidGraph     = errors.New("invalid question graph")
	ErrUnknownSuccessor = errors.New("unknown successor question")
	ErrQuestionNotFound = errors.New("question not found")

	// Answer errors
	ErrInvalidAnswer = errors.New("invalid answer")

	// Validation errors
	ErrMissingField      = errors.New("required field is missing")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrUnsupportedFormat = errors.New("unsupported result format")
)

type InvalidAnswerReason string

const (
	ReasonRequired      InvalidAnswerReason = "required"
	ReasonOutOfRange    InvalidAnswerReason = "out_of_range"
	ReasonUnparseable   InvalidAnswerReason = "unparseable_number"
	ReasonUnknownOption InvalidAnswerReason = "unknown_option"
	ReasonKindMismatch  InvalidAnswerReason = "kind_mismatch"
)

// InvalidAnswerError describes why an answer was rejected. It matches
// ErrInvalidAnswer with errors.Is.
type InvalidAnswerError struct {
	QuestionID string
	Reason     InvalidAnswerReason
	Detail     string
}

func (e *InvalidAnswerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("invalid answer for %q: %s", e.QuestionID, e.Reason)
	}
	return fmt.Sprintf("invalid answer for %q: %s: %s", e.QuestionID, e.Reason, e.Detail)
}

func (e *InvalidAnswerError) Is(target error) bool {
	return target == ErrInvalidAnswer
}

// GraphError lists every problem found while building a question graph.
type GraphError struct {
	Problems []string
	causes   []error
}

// AddProblem records a problem; cause is the sentinel it should match.
func (e *GraphError) AddProblem(cause error, format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
	e.causes = append(e.causes, cause)
}

func (e *GraphError) HasProblems() bool {
	return len(e.Problems) > 0
}

func (e *GraphError) Error() string {
	msg := fmt.Sprintf("%s: %d problem(s)", ErrInvalidGraph, len(e.Problems))
	for _, p := range e.Problems {
		msg += "\n  - " + p
	}
	return msg
}

func (e *GraphError) Unwrap() []error {
	return append([]error{ErrInvalidGraph}, e.causes...)
}
