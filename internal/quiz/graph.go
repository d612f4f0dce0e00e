package quiz

import (
	"github.com/futig/quiz-chat/internal/entity"
)

// Graph is the immutable set of questions of a questionnaire.
type Graph struct {
	start     string
	questions map[string]*entity.QuestionDefinition
	order     []string
}

// NewGraph builds and checks a question graph. All problems are collected
// into a single *entity.GraphError.
func NewGraph(start string, questions ...entity.QuestionDefinition) (*Graph, error) {
	g := &Graph{
		start:     start,
		questions: make(map[string]*entity.QuestionDefinition, len(questions)),
		order:     make([]string, 0, len(questions)),
	}

	problems := &entity.GraphError{}

	for i := range questions {
		q := questions[i]
		if q.ID == "" {
			problems.AddProblem(entity.ErrInvalidGraph, "question #%d has an empty id", i+1)
			continue
		}
		if q.ID == entity.CompleteID {
			problems.AddProblem(entity.ErrInvalidGraph, "question id %q is reserved", q.ID)
			continue
		}
		if _, exists := g.questions[q.ID]; exists {
			problems.AddProblem(entity.ErrInvalidGraph, "duplicate question id %q", q.ID)
			continue
		}

		q.Options = append([]entity.Option(nil), q.Options...)
		if q.Validation != nil {
			v := *q.Validation
			if v.Min != nil {
				v.Min = entity.Bound(*v.Min)
			}
			if v.Max != nil {
				v.Max = entity.Bound(*v.Max)
			}
			q.Validation = &v
		}

		g.questions[q.ID] = &q
		g.order = append(g.order, q.ID)
	}

	if start == "" {
		problems.AddProblem(entity.ErrInvalidGraph, "start question is not set")
	} else if _, ok := g.questions[start]; !ok {
		problems.AddProblem(entity.ErrUnknownSuccessor, "start question %q does not exist", start)
	}

	for _, id := range g.order {
		checkQuestion(g, g.questions[id], problems)
	}

	if problems.HasProblems() {
		return nil, problems
	}

	return g, nil
}

func checkQuestion(g *Graph, q *entity.QuestionDefinition, problems *entity.GraphError) {
	if err := q.Kind.Validate(); err != nil {
		problems.AddProblem(entity.ErrInvalidGraph, "question %q: %v", q.ID, err)
	}

	if q.Prompt == "" {
		problems.AddProblem(entity.ErrInvalidGraph, "question %q has an empty prompt", q.ID)
	}

	if q.Kind.IsChoice() {
		if len(q.Options) == 0 {
			problems.AddProblem(entity.ErrInvalidGraph, "question %q needs at least one option", q.ID)
		}
		seen := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			if opt.Value == "" {
				problems.AddProblem(entity.ErrInvalidGraph, "question %q has an option with an empty value", q.ID)
				continue
			}
			if seen[opt.Value] {
				problems.AddProblem(entity.ErrInvalidGraph, "question %q has duplicate option value %q", q.ID, opt.Value)
			}
			seen[opt.Value] = true
		}
	}

	if v := q.Validation; v != nil && v.Min != nil && v.Max != nil && *v.Min > *v.Max {
		problems.AddProblem(entity.ErrInvalidGraph, "question %q has min %v greater than max %v", q.ID, *v.Min, *v.Max)
	}

	for _, target := range q.Next.Targets() {
		if _, ok := g.questions[target]; !ok {
			problems.AddProblem(entity.ErrUnknownSuccessor, "question %q points to unknown question %q", q.ID, target)
		}
	}
}

// Start returns the id of the first question.
func (g *Graph) Start() string {
	return g.start
}

// Question looks up a definition by id.
func (g *Graph) Question(id string) (*entity.QuestionDefinition, bool) {
	q, ok := g.questions[id]
	return q, ok
}

// Questions returns the definitions in declaration order.
func (g *Graph) Questions() []*entity.QuestionDefinition {
	out := make([]*entity.QuestionDefinition, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.questions[id])
	}
	return out
}

func (g *Graph) Len() int {
	return len(g.order)
}

// HasCycle reports whether some question can be reached again from itself.
func (g *Graph) HasCycle() bool {
	const (
		unvisited = iota
		inProgress
		done
	)

	marks := make(map[string]int, len(g.order))

	var visit func(id string) bool
	visit = func(id string) bool {
		switch marks[id] {
		case inProgress:
			return true
		case done:
			return false
		}

		marks[id] = inProgress
		for _, next := range g.questions[id].Next.Targets() {
			if visit(next) {
				return true
			}
		}
		marks[id] = done
		return false
	}

	for _, id := range g.order {
		if marks[id] == unvisited && visit(id) {
			return true
		}
	}
	return false
}

// Unreachable lists questions that cannot be reached from the start question.
func (g *Graph) Unreachable() []string {
	reached := map[string]bool{}
	queue := []string{g.start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reached[id] {
			continue
		}
		reached[id] = true
		queue = append(queue, g.questions[id].Next.Targets()...)
	}

	var out []string
	for _, id := range g.order {
		if !reached[id] {
			out = append(out, id)
		}
	}
	return out
}
