package session

import (
	"slices"

	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/pkg/formatter"
	"github.com/futig/quiz-chat/internal/quiz"
)

// QuestionToDTO converts a question definition to its transport form
func QuestionToDTO(q *entity.QuestionDefinition) *entity.QuestionDTO {
	if q == nil {
		return nil
	}

	dto := &entity.QuestionDTO{
		ID:          q.ID,
		Kind:        q.Kind,
		Prompt:      q.Prompt,
		Description: q.Description,
		Next:        q.Next.Targets(),
	}

	for _, opt := range q.Options {
		dto.Options = append(dto.Options, entity.OptionDTO{ID: opt.ID, Label: opt.Label, Value: opt.Value})
	}

	if q.Kind == entity.KindSlider {
		lo, hi := quiz.SliderBounds(q)
		dto.Validation = &entity.ValidationDTO{Required: true, Min: entity.Bound(lo), Max: entity.Bound(hi)}
	} else if q.Validation != nil {
		dto.Validation = &entity.ValidationDTO{
			Required: q.Validation.Required,
			Min:      q.Validation.Min,
			Max:      q.Validation.Max,
		}
	}

	return dto
}

func EntryToDTO(e entity.ChatEntry) entity.ChatEntryDTO {
	return entity.ChatEntryDTO{
		ID:        e.ID,
		Author:    e.Author,
		Text:      e.Text,
		CreatedAt: e.CreatedAt,
		Question:  QuestionToDTO(e.Question),
	}
}

// SessionToDTO converts a session to the view returned by the HTTP API
func SessionToDTO(s *entity.Session) *entity.SessionDTO {
	dto := &entity.SessionDTO{
		ID:              s.ID,
		Status:          s.State.Status(),
		CurrentQuestion: QuestionToDTO(s.State.CurrentQuestion),
		Answers:         s.State.Answers,
		Transcript:      make([]entity.ChatEntryDTO, 0, len(s.State.Transcript)),
		Complete:        s.State.Complete,
		Typing:          s.State.Typing,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}

	if s.State.CurrentQuestionID != "" {
		id := s.State.CurrentQuestionID
		dto.CurrentQuestionID = &id
	}

	for _, e := range s.State.Transcript {
		dto.Transcript = append(dto.Transcript, EntryToDTO(e))
	}

	return dto
}

// GraphToDTO lists the questions of a graph in declaration order
func GraphToDTO(g *quiz.Graph) *entity.QuestionGraphDTO {
	dto := &entity.QuestionGraphDTO{Start: g.Start()}
	for _, q := range g.Questions() {
		dto.Questions = append(dto.Questions, *QuestionToDTO(q))
	}
	return dto
}

// resultToReport orders the answers by the graph. Answers to questions the
// graph no longer has are listed last under their id.
func resultToReport(result *entity.AssessmentResult, g *quiz.Graph) *formatter.Report {
	report := &formatter.Report{
		SessionID:   result.SessionID,
		CompletedAt: result.CompletedAt,
	}

	listed := make(map[string]bool, len(result.Answers))
	for _, q := range g.Questions() {
		answer, ok := result.Answers[q.ID]
		if !ok {
			continue
		}
		listed[q.ID] = true
		report.Items = append(report.Items, formatter.ReportItem{
			Question: q.Prompt,
			Answer:   quiz.FormatAnswer(q, answer),
		})
	}

	var orphans []string
	for id := range result.Answers {
		if !listed[id] {
			orphans = append(orphans, id)
		}
	}
	slices.Sort(orphans)
	for _, id := range orphans {
		report.Items = append(report.Items, formatter.ReportItem{Question: id, Answer: result.Answers[id].String()})
	}

	for _, e := range result.Transcript {
		report.Transcript = append(report.Transcript, formatter.ReportLine{Author: e.Author, Text: e.Text})
	}

	return report
}
