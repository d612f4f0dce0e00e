package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/futig/quiz-chat/internal/entity"
)

type graphDocument struct {
	Start     string             `json:"start"`
	Questions []questionDocument `json:"questions"`
}

type questionDocument struct {
	ID          string             `json:"id"`
	Kind        string             `json:"kind"`
	Prompt      string             `json:"prompt"`
	Description string             `json:"description,omitempty"`
	Label       string             `json:"label,omitempty"`
	Options     []entity.Option    `json:"options,omitempty"`
	Validation  *entity.Validation `json:"validation,omitempty"`
	Next        nextDocument       `json:"next"`
}

// nextDocument is either a plain question id or a set of branches.
type nextDocument struct {
	To       string           `json:"-"`
	Branches []branchDocument `json:"branches"`
	Default  string           `json:"default"`
}

type branchDocument struct {
	Equals   *string  `json:"equals,omitempty"`
	Contains *string  `json:"contains,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	To       string   `json:"to"`
}

func (n *nextDocument) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &n.To)
	}

	type plain nextDocument
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = nextDocument(p)
	return nil
}

// LoadGraphFile reads a question graph from a JSON file.
func LoadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open questions file: %w", err)
	}
	defer f.Close()

	return ParseGraph(f)
}

// ParseGraph decodes a question graph document and builds the graph.
func ParseGraph(r io.Reader) (*Graph, error) {
	var doc graphDocument
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to decode questions: %v", entity.ErrInvalidGraph, err)
	}

	questions := make([]entity.QuestionDefinition, 0, len(doc.Questions))
	for _, qd := range doc.Questions {
		next, err := qd.Next.successor()
		if err != nil {
			return nil, fmt.Errorf("%w: question %q: %v", entity.ErrInvalidGraph, qd.ID, err)
		}

		questions = append(questions, entity.QuestionDefinition{
			ID:          qd.ID,
			Kind:        entity.QuestionKind(qd.Kind),
			Prompt:      qd.Prompt,
			Description: qd.Description,
			Label:       qd.Label,
			Options:     qd.Options,
			Validation:  qd.Validation,
			Next:        next,
		})
	}

	return NewGraph(doc.Start, questions...)
}

func (n nextDocument) successor() (entity.Successor, error) {
	if len(n.Branches) == 0 {
		if n.To != "" {
			return entity.Fixed(n.To), nil
		}
		return entity.Fixed(n.Default), nil
	}

	targets := make([]string, 0, len(n.Branches)+1)
	for i, b := range n.Branches {
		if b.Equals == nil && b.Contains == nil && b.Min == nil && b.Max == nil {
			return entity.Successor{}, fmt.Errorf("branch #%d has no condition", i+1)
		}
		if b.To == "" {
			return entity.Successor{}, fmt.Errorf("branch #%d has no target", i+1)
		}
		targets = append(targets, b.To)
	}
	targets = append(targets, n.Default)

	branches := slices.Clone(n.Branches)
	fallback := n.Default
	return entity.Computed(func(answer entity.AnswerValue) string {
		for _, b := range branches {
			if b.matches(answer) {
				return b.To
			}
		}
		return fallback
	}, targets...), nil
}

// matches reports whether every condition set on the branch holds.
func (b branchDocument) matches(answer entity.AnswerValue) bool {
	if b.Equals != nil {
		var got string
		switch answer.Type() {
		case entity.AnswerTypeChoice:
			got = answer.Choice()
		case entity.AnswerTypeText:
			got = answer.Text()
		default:
			got = answer.String()
		}
		if got != *b.Equals {
			return false
		}
	}

	if b.Contains != nil && !slices.Contains(answer.Choices(), *b.Contains) {
		return false
	}

	if b.Min != nil || b.Max != nil {
		if answer.Type() != entity.AnswerTypeNumber {
			return false
		}
		n := answer.Number()
		if b.Min != nil && n < *b.Min {
			return false
		}
		if b.Max != nil && n > *b.Max {
			return false
		}
	}

	return true
}
