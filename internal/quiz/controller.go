package quiz

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/scheduler"
)

const (
	WelcomeText = "Welcome to Overang AI Health Platform! I'm here to help you get personalized health " +
		"recommendations. Let's start with a few questions to understand your health profile better."
	NextQuestionPrefix = "Great! Now let's move on to: "
	CompletionText     = "Thank you for completing the assessment! Based on your responses, I'm preparing " +
		"personalized recommendations for you. This information will help us provide the most relevant " +
		"health and wellness guidance."
)

// Delays between a user action and the system entry it causes.
type Delays struct {
	FirstQuestion time.Duration
	NextQuestion  time.Duration
	Completion    time.Duration
	Reply         time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		FirstQuestion: 1500 * time.Millisecond,
		NextQuestion:  time.Second,
		Completion:    time.Second,
		Reply:         1500 * time.Millisecond,
	}
}

// Observer receives every transcript entry after it is appended, in
// transcript order. Calls are never concurrent for one controller.
type Observer func(entry entity.ChatEntry)

// CompletionHook receives the state of a session at the moment its last
// answer was recorded.
type CompletionHook func(state entity.SessionState)

type Option func(*Controller)

func WithScheduler(s scheduler.Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

func WithDelays(d Delays) Option {
	return func(c *Controller) { c.delays = d }
}

func WithResponder(r *Responder) Option {
	return func(c *Controller) { c.responder = r }
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

func WithCompletionHook(h CompletionHook) Option {
	return func(c *Controller) { c.onComplete = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller drives a single questionnaire session. It is safe for
// concurrent use.
type Controller struct {
	graph      *Graph
	scheduler  scheduler.Scheduler
	clock      clockwork.Clock
	delays     Delays
	responder  *Responder
	observer   Observer
	onComplete CompletionHook
	logger     *zap.Logger

	mu             sync.Mutex
	currentID      string
	answers        map[string]entity.AnswerValue
	transcript     []entity.ChatEntry
	complete       bool
	initialized    bool
	closed         bool
	pendingReplies int
	lastEntryID    uint64

	// appended entries not yet handed to the observer
	outbox   []entity.ChatEntry
	draining bool
}

func NewController(graph *Graph, opts ...Option) *Controller {
	c := &Controller{
		graph:   graph,
		delays:  DefaultDelays(),
		answers: make(map[string]entity.AnswerValue),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.scheduler == nil {
		c.scheduler = scheduler.NewTimerScheduler(c.clock)
	}
	if c.responder == nil {
		c.responder = NewResponder()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	return c
}

// Initialize posts the welcome entry and schedules the first question.
// Calling it again has no effect.
func (c *Controller) Initialize() {
	c.mu.Lock()
	if c.initialized || c.closed {
		c.mu.Unlock()
		return
	}
	c.initialized = true

	c.appendLocked(entity.AuthorSystem, WelcomeText, nil)
	c.scheduler.Schedule(c.delays.FirstQuestion, c.showFirstQuestion)
	c.mu.Unlock()

	c.logger.Debug("session initialized", zap.String("start", c.graph.Start()))
	c.flush()
}

func (c *Controller) showFirstQuestion() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	q, _ := c.graph.Question(c.graph.Start())
	c.currentID = q.ID
	c.appendLocked(entity.AuthorSystem, q.Prompt, q)
	c.mu.Unlock()

	c.flush()
}

// SubmitAnswer records an answer to the current question and moves the flow
// on. A rejected answer leaves the state untouched.
func (c *Controller) SubmitAnswer(value entity.AnswerValue) error {
	c.mu.Lock()

	q, err := c.answerableLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	coerced, err := ValidateAnswer(q, value)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	nextID := q.Next.Resolve(coerced)
	var next *entity.QuestionDefinition
	if nextID != "" {
		var ok bool
		if next, ok = c.graph.Question(nextID); !ok {
			c.mu.Unlock()
			return fmt.Errorf("%w: %q after %q", entity.ErrUnknownSuccessor, nextID, q.ID)
		}
	}

	c.answers[q.ID] = coerced
	c.appendLocked(entity.AuthorUser, FormatAnswer(q, coerced), nil)

	var final *entity.SessionState
	if next == nil {
		c.complete = true
		c.currentID = ""
		state := c.snapshotLocked()
		final = &state
		c.scheduler.Schedule(c.delays.Completion, c.postSystem(CompletionText, nil))
	} else {
		c.currentID = next.ID
		c.scheduler.Schedule(c.delays.NextQuestion, c.postSystem(NextQuestionPrefix+next.Prompt, next))
	}
	c.mu.Unlock()

	c.logger.Debug("answer recorded",
		zap.String("question_id", q.ID),
		zap.String("next", nextID),
	)
	c.flush()

	if final != nil && c.onComplete != nil {
		c.onComplete(*final)
	}
	return nil
}

func (c *Controller) answerableLocked() (*entity.QuestionDefinition, error) {
	switch {
	case c.closed:
		return nil, entity.ErrSessionClosed
	case c.complete:
		return nil, entity.ErrSessionCompleted
	case c.currentID == "":
		return nil, entity.ErrNoCurrentQuestion
	}

	q, ok := c.graph.Question(c.currentID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrQuestionNotFound, c.currentID)
	}
	return q, nil
}

// SubmitMessage posts a free-form message and schedules the canned reply.
// The flow state is not affected.
func (c *Controller) SubmitMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return entity.ErrEmptyMessage
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return entity.ErrSessionClosed
	}

	c.appendLocked(entity.AuthorUser, text, nil)
	reply := c.responder.Reply(text, c.currentLocked())
	c.pendingReplies++
	c.scheduler.Schedule(c.delays.Reply, func() {
		c.mu.Lock()
		c.pendingReplies--
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.appendLocked(entity.AuthorSystem, reply, nil)
		c.mu.Unlock()

		c.flush()
	})
	c.mu.Unlock()

	c.flush()
	return nil
}

// postSystem returns a task appending a system entry unless the session has
// been closed by the time it runs.
func (c *Controller) postSystem(text string, q *entity.QuestionDefinition) func() {
	return func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.appendLocked(entity.AuthorSystem, text, q)
		c.mu.Unlock()

		c.flush()
	}
}

// CurrentQuestion returns the question waiting for an answer, or nil.
func (c *Controller) CurrentQuestion() *entity.QuestionDefinition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

func (c *Controller) currentLocked() *entity.QuestionDefinition {
	if c.currentID == "" {
		return nil
	}
	q, ok := c.graph.Question(c.currentID)
	if !ok {
		return nil
	}
	return q
}

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot() entity.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() entity.SessionState {
	answers := make(map[string]entity.AnswerValue, len(c.answers))
	for id, v := range c.answers {
		answers[id] = v
	}

	return entity.SessionState{
		CurrentQuestionID: c.currentID,
		CurrentQuestion:   c.currentLocked(),
		Answers:           answers,
		Transcript:        append([]entity.ChatEntry(nil), c.transcript...),
		Complete:          c.complete,
		Typing:            c.pendingReplies > 0,
	}
}

func (c *Controller) Graph() *Graph {
	return c.graph
}

// Close disposes the session. Entries still scheduled are dropped and further
// submissions fail with entity.ErrSessionClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) appendLocked(author entity.Author, text string, q *entity.QuestionDefinition) {
	c.lastEntryID++
	entry := entity.ChatEntry{
		ID:        c.lastEntryID,
		Author:    author,
		Text:      text,
		CreatedAt: c.clock.Now(),
		Question:  q,
	}
	if q != nil {
		entry.QuestionID = q.ID
	}

	c.transcript = append(c.transcript, entry)
	if c.observer != nil {
		c.outbox = append(c.outbox, entry)
	}
}

// flush hands queued entries to the observer. Only one caller drains at a
// time; the others leave their entries to it.
func (c *Controller) flush() {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true

	for len(c.outbox) > 0 {
		entry := c.outbox[0]
		c.outbox = c.outbox[1:]
		c.mu.Unlock()

		c.observer(entry)

		c.mu.Lock()
	}
	c.outbox = nil
	c.draining = false
	c.mu.Unlock()
}
