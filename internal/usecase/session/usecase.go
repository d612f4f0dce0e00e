package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jonboulle/clockwork"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/pkg/formatter"
	pkgRetry "github.com/futig/quiz-chat/internal/pkg/retry"
	"github.com/futig/quiz-chat/internal/quiz"
	"github.com/futig/quiz-chat/internal/scheduler"
)

type Config struct {
	SessionTTL      time.Duration
	CleanupInterval time.Duration
	Delays          quiz.Delays
	ArchiveRetry    pkgRetry.RetryConfig
}

type Option func(*SessionUsecase)

// WithClock replaces the wall clock, mostly for tests
func WithClock(clock clockwork.Clock) Option {
	return func(uc *SessionUsecase) { uc.clock = clock }
}

// WithScheduler replaces the timer scheduler used by every controller
func WithScheduler(s scheduler.Scheduler) Option {
	return func(uc *SessionUsecase) { uc.scheduler = s }
}

func WithResponder(r *quiz.Responder) Option {
	return func(uc *SessionUsecase) { uc.responder = r }
}

// StartOptions configure a new session
type StartOptions struct {
	// CallbackURL receives entry and final_result events when set
	CallbackURL string
	// Observer sees every transcript entry of the session
	Observer quiz.Observer
}

// ExportedResult is a rendered assessment ready for download
type ExportedResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

type liveSession struct {
	id          string
	callbackURL string
	controller  *quiz.Controller
	callbacks   dispatcher
	createdAt   time.Time

	mu          sync.Mutex
	updatedAt   time.Time
	completedAt time.Time
}

func (s *liveSession) touch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = t
}

func (s *liveSession) times() (updated, completed time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt, s.completedAt
}

// SessionUsecase runs many questionnaire sessions side by side
type SessionUsecase struct {
	graph        *quiz.Graph
	responder    *quiz.Responder
	delays       quiz.Delays
	clock        clockwork.Clock
	scheduler    scheduler.Scheduler
	sessions     *cache.Cache
	resultRepo   ResultRepository
	callbacks    CallbackConnector
	formatters   *formatter.Factory
	archiveRetry pkgRetry.RetryConfig
	logger       *zap.Logger
}

// NewUsecase creates a new session use case. resultRepo and callbacks may be
// nil, which disables archiving and webhooks.
func NewUsecase(
	graph *quiz.Graph,
	cfg Config,
	resultRepo ResultRepository,
	callbacks CallbackConnector,
	formatters *formatter.Factory,
	logger *zap.Logger,
	opts ...Option,
) *SessionUsecase {
	uc := &SessionUsecase{
		graph:        graph,
		responder:    quiz.NewResponder(),
		delays:       cfg.Delays,
		clock:        clockwork.NewRealClock(),
		sessions:     cache.New(cfg.SessionTTL, cfg.CleanupInterval),
		resultRepo:   resultRepo,
		callbacks:    callbacks,
		formatters:   formatters,
		archiveRetry: cfg.ArchiveRetry,
		logger:       logger,
	}

	for _, opt := range opts {
		opt(uc)
	}
	if uc.scheduler == nil {
		uc.scheduler = scheduler.NewTimerScheduler(uc.clock)
	}

	uc.sessions.OnEvicted(func(id string, v any) {
		if s, ok := v.(*liveSession); ok {
			s.controller.Close()
			uc.logger.Debug("session closed", zap.String("session_id", id))
		}
	})

	return uc
}

// StartSession creates and initializes a new session
func (uc *SessionUsecase) StartSession(ctx context.Context, opts StartOptions) (*entity.Session, error) {
	now := uc.clock.Now()
	s := &liveSession{
		id:          uuid.New().String(),
		callbackURL: opts.CallbackURL,
		createdAt:   now,
		updatedAt:   now,
	}

	s.controller = quiz.NewController(uc.graph,
		quiz.WithClock(uc.clock),
		quiz.WithScheduler(uc.scheduler),
		quiz.WithDelays(uc.delays),
		quiz.WithResponder(uc.responder),
		quiz.WithLogger(uc.logger.With(zap.String("session_id", s.id))),
		quiz.WithObserver(uc.observe(s, opts.Observer)),
		quiz.WithCompletionHook(uc.onComplete(s)),
	)

	if err := uc.sessions.Add(s.id, s, cache.DefaultExpiration); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.controller.Initialize()

	ctxzap.Info(ctx, "session started",
		zap.String("session_id", s.id),
		zap.Bool("with_callback", s.callbackURL != ""),
	)

	return uc.view(s), nil
}

func (uc *SessionUsecase) observe(s *liveSession, next quiz.Observer) quiz.Observer {
	return func(e entity.ChatEntry) {
		s.touch(e.CreatedAt)

		if next != nil {
			next(e)
		}

		if s.callbackURL != "" && uc.callbacks != nil && e.Author == entity.AuthorSystem {
			data := &entity.CallbackEntryData{SessionID: s.id, Entry: EntryToDTO(e)}
			s.callbacks.enqueue(func() {
				uc.callbacks.SendEntry(uc.sessionContext(s.id), s.callbackURL, data)
			})
		}
	}
}

func (uc *SessionUsecase) onComplete(s *liveSession) quiz.CompletionHook {
	return func(state entity.SessionState) {
		completedAt := uc.clock.Now()
		s.mu.Lock()
		s.completedAt = completedAt
		s.mu.Unlock()

		ctx := uc.sessionContext(s.id)
		ctxzap.Info(ctx, "session completed", zap.Int("answers", len(state.Answers)))

		result := &entity.AssessmentResult{
			SessionID:   s.id,
			Answers:     state.Answers,
			Transcript:  state.Transcript,
			CompletedAt: completedAt,
		}
		archiveErr := uc.archive(ctx, result)

		if s.callbackURL != "" && uc.callbacks != nil {
			if archiveErr != nil {
				s.callbacks.enqueue(func() {
					uc.callbacks.SendError(ctx, s.callbackURL, s.id, "assessment was not archived", map[string]any{
						"session_id": s.id,
						"step":       "archive",
					})
				})
			}

			data := &entity.CallbackFinalResultData{
				SessionID:   s.id,
				Answers:     state.Answers,
				CompletedAt: completedAt.UTC().Format(time.RFC3339),
			}
			s.callbacks.enqueue(func() {
				uc.callbacks.SendFinalResult(ctx, s.callbackURL, data)
			})
		}
	}
}

func (uc *SessionUsecase) archive(ctx context.Context, result *entity.AssessmentResult) error {
	if uc.resultRepo == nil {
		return nil
	}

	err := uc.archiveRetry.Do(ctx, func(ctx context.Context) error {
		return uc.resultRepo.Save(ctx, result)
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to archive assessment result", zap.Error(err))
	}
	return err
}

func (uc *SessionUsecase) sessionContext(id string) context.Context {
	return ctxzap.ToContext(context.Background(), uc.logger.With(zap.String("session_id", id)))
}

// get looks a session up and extends its lifetime
func (uc *SessionUsecase) get(id string) (*liveSession, error) {
	v, ok := uc.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, id)
	}

	s := v.(*liveSession)
	if s.controller.Closed() {
		return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, id)
	}
	uc.sessions.Set(id, s, cache.DefaultExpiration)

	return s, nil
}

func (uc *SessionUsecase) view(s *liveSession) *entity.Session {
	updated, _ := s.times()
	return &entity.Session{
		ID:          s.id,
		CallbackURL: s.callbackURL,
		State:       s.controller.Snapshot(),
		CreatedAt:   s.createdAt,
		UpdatedAt:   updated,
	}
}

func (uc *SessionUsecase) GetSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	s, err := uc.get(sessionID)
	if err != nil {
		return nil, err
	}
	return uc.view(s), nil
}

// CurrentQuestion returns the question waiting for an answer, or nil
func (uc *SessionUsecase) CurrentQuestion(ctx context.Context, sessionID string) (*entity.QuestionDefinition, error) {
	s, err := uc.get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.controller.CurrentQuestion(), nil
}

// SubmitAnswer accepts loosely typed input, as decoded from JSON, for the
// current question.
func (uc *SessionUsecase) SubmitAnswer(ctx context.Context, sessionID string, raw any) (*entity.Session, error) {
	s, err := uc.get(sessionID)
	if err != nil {
		return nil, err
	}

	q := s.controller.CurrentQuestion()
	if q == nil {
		return nil, noQuestionError(s)
	}

	value, err := quiz.AnswerFromInput(q, raw)
	if err != nil {
		return nil, err
	}

	return uc.submit(ctx, s, value)
}

// SubmitAnswerValue submits an already typed answer
func (uc *SessionUsecase) SubmitAnswerValue(ctx context.Context, sessionID string, value entity.AnswerValue) (*entity.Session, error) {
	s, err := uc.get(sessionID)
	if err != nil {
		return nil, err
	}
	return uc.submit(ctx, s, value)
}

func (uc *SessionUsecase) submit(ctx context.Context, s *liveSession, value entity.AnswerValue) (*entity.Session, error) {
	if err := s.controller.SubmitAnswer(value); err != nil {
		var invalid *entity.InvalidAnswerError
		if errors.As(err, &invalid) {
			ctxzap.Debug(ctx, "answer rejected",
				zap.String("question_id", invalid.QuestionID),
				zap.String("reason", string(invalid.Reason)),
			)
			return nil, err
		}
		return nil, fmt.Errorf("submit answer: %w", err)
	}

	return uc.view(s), nil
}

func noQuestionError(s *liveSession) error {
	switch {
	case s.controller.Closed():
		return entity.ErrSessionClosed
	case s.controller.Snapshot().Complete:
		return entity.ErrSessionCompleted
	default:
		return entity.ErrNoCurrentQuestion
	}
}

// SubmitMessage posts a side-channel message
func (uc *SessionUsecase) SubmitMessage(ctx context.Context, sessionID, text string) (*entity.Session, error) {
	s, err := uc.get(sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.controller.SubmitMessage(text); err != nil {
		return nil, fmt.Errorf("submit message: %w", err)
	}

	return uc.view(s), nil
}

// CancelSession closes the session and forgets it
func (uc *SessionUsecase) CancelSession(ctx context.Context, sessionID string) error {
	if _, err := uc.get(sessionID); err != nil {
		return err
	}

	uc.sessions.Delete(sessionID)
	ctxzap.Info(ctx, "session canceled", zap.String("session_id", sessionID))
	return nil
}

// GetResult returns the assessment of a completed session, from memory or
// from the archive once the session has expired.
func (uc *SessionUsecase) GetResult(ctx context.Context, sessionID string) (*entity.AssessmentResult, error) {
	s, err := uc.get(sessionID)
	if err == nil {
		state := s.controller.Snapshot()
		if !state.Complete {
			return nil, entity.ErrSessionNotCompleted
		}

		_, completedAt := s.times()
		return &entity.AssessmentResult{
			SessionID:   s.id,
			Answers:     state.Answers,
			Transcript:  state.Transcript,
			CompletedAt: completedAt,
		}, nil
	}

	if uc.resultRepo == nil {
		return nil, err
	}

	result, repoErr := uc.resultRepo.Get(ctx, sessionID)
	if repoErr != nil {
		if errors.Is(repoErr, entity.ErrResultNotFound) || errors.Is(repoErr, entity.ErrInvalidParameter) {
			return nil, err
		}
		return nil, fmt.Errorf("get archived result: %w", repoErr)
	}
	return result, nil
}

// ExportResult renders a completed assessment in the requested format
func (uc *SessionUsecase) ExportResult(ctx context.Context, sessionID string, format entity.ResultFormat) (*ExportedResult, error) {
	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	result, err := uc.GetResult(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	data, err := f.Format(resultToReport(result, uc.graph))
	if err != nil {
		return nil, fmt.Errorf("format result: %w", err)
	}

	return &ExportedResult{
		Data:        data,
		ContentType: f.ContentType(),
		Filename:    "assessment-" + result.SessionID + f.FileExtension(),
	}, nil
}

func (uc *SessionUsecase) Graph() *quiz.Graph {
	return uc.graph
}

// ActiveSessions returns the number of sessions held in memory
func (uc *SessionUsecase) ActiveSessions() int {
	return uc.sessions.ItemCount()
}

// Shutdown closes every live session
func (uc *SessionUsecase) Shutdown() {
	for id := range uc.sessions.Items() {
		uc.sessions.Delete(id)
	}
}
