package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/config"
	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/pkg/formatter"
	"github.com/futig/quiz-chat/internal/pkg/validator"
	"github.com/futig/quiz-chat/internal/quiz"
	"github.com/futig/quiz-chat/internal/scheduler"
	sessionuc "github.com/futig/quiz-chat/internal/usecase/session"
)

type testServer struct {
	router http.Handler
	queue  *scheduler.Queue
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	queue := scheduler.NewQueue(clock)

	uc := sessionuc.NewUsecase(quiz.ReferenceGraph(),
		sessionuc.Config{SessionTTL: time.Hour, Delays: quiz.DefaultDelays()},
		nil, nil, formatter.NewFactory(), zap.NewNop(),
		sessionuc.WithClock(clock),
		sessionuc.WithScheduler(queue),
	)

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, validator.NewValidator(config.QuizConfig{MaxMessageLength: 50})))

	return &testServer{router: r, queue: queue}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequestWithContext(context.Background(), method, path, nil)
	} else {
		req = httptest.NewRequestWithContext(context.Background(), method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) start(t *testing.T) entity.SessionDTO {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/quiz-session/", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	s.queue.RunAll()

	return decode[entity.SessionDTO](t, rec)
}

func (s *testServer) answer(t *testing.T, id, value string) *httptest.ResponseRecorder {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/quiz-session/"+id+"/answer", `{"value":`+value+`}`)
	s.queue.RunAll()
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestStartSessionAcceptsEmptyBody(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/quiz-session/", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	dto := decode[entity.SessionDTO](t, rec)
	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, entity.SessionStatusStarting, dto.Status)
	require.Len(t, dto.Transcript, 1)
	assert.Equal(t, quiz.WelcomeText, dto.Transcript[0].Text)
}

func TestStartSessionRejectsBadCallback(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/quiz-session/", `{"callback_url":"ftp://example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/quiz-session/", `{"unknown":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrentQuestion(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/quiz-session/", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[entity.SessionDTO](t, rec).ID

	// the first question is posted after a delay
	rec = s.do(t, http.MethodGet, "/quiz-session/"+id+"/question", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	s.queue.RunAll()

	rec = s.do(t, http.MethodGet, "/quiz-session/"+id+"/question", "")
	require.Equal(t, http.StatusOK, rec.Code)

	q := decode[entity.QuestionDTO](t, rec)
	assert.Equal(t, "age", q.ID)
	assert.Equal(t, entity.KindSlider, q.Kind)
	require.NotNil(t, q.Validation)
	assert.Equal(t, 18.0, *q.Validation.Min)
	assert.Equal(t, 100.0, *q.Validation.Max)
}

func TestSubmitAnswer(t *testing.T) {
	s := newTestServer(t)
	id := s.start(t).ID

	rec := s.answer(t, id, `42`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/quiz-session/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	dto := decode[entity.SessionDTO](t, rec)
	require.NotNil(t, dto.CurrentQuestionID)
	assert.Equal(t, "weight", *dto.CurrentQuestionID)
	assert.Equal(t, 42.0, dto.Answers["age"].Number())
	assert.Equal(t, entity.SessionStatusInProgress, dto.Status)
}

func TestSubmitAnswerValidationError(t *testing.T) {
	s := newTestServer(t)
	id := s.start(t).ID

	rec := s.answer(t, id, `150`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decode[entity.ErrorResponse](t, rec)
	assert.Equal(t, string(entity.ReasonOutOfRange), body.Reason)
	assert.Equal(t, "age", body.QuestionID)

	rec = s.do(t, http.MethodPost, "/quiz-session/"+id+"/answer", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAnswerUnknownSession(t *testing.T) {
	s := newTestServer(t)

	rec := s.answer(t, "00000000-0000-0000-0000-000000000000", `30`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitAnswerBeforeFirstQuestion(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/quiz-session/", "")
	id := decode[entity.SessionDTO](t, rec).ID

	rec = s.do(t, http.MethodPost, "/quiz-session/"+id+"/answer", `{"value":30}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmitMessage(t *testing.T) {
	s := newTestServer(t)
	id := s.start(t).ID

	rec := s.do(t, http.MethodPost, "/quiz-session/"+id+"/message", `{"text":"help"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[entity.SessionDTO](t, rec).Typing)

	s.queue.RunAll()

	rec = s.do(t, http.MethodGet, "/quiz-session/"+id, "")
	dto := decode[entity.SessionDTO](t, rec)
	assert.False(t, dto.Typing)

	last := dto.Transcript[len(dto.Transcript)-1]
	assert.Equal(t, entity.AuthorSystem, last.Author)
	assert.Equal(t, "age", *dto.CurrentQuestionID)

	rec = s.do(t, http.MethodPost, "/quiz-session/"+id+"/message", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	long := `{"text":"` + string(bytes.Repeat([]byte("a"), 51)) + `"}`
	rec = s.do(t, http.MethodPost, "/quiz-session/"+id+"/message", long)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResultDownload(t *testing.T) {
	s := newTestServer(t)
	id := s.start(t).ID

	rec := s.do(t, http.MethodGet, "/quiz-session/"+id+"/result", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	for _, v := range []string{`35`, `160`, `"moderate"`, `["energy"]`, `[]`, `"year"`, `"Sleep better"`} {
		rec := s.answer(t, id, v)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/quiz-session/"+id, "")
	dto := decode[entity.SessionDTO](t, rec)
	assert.True(t, dto.Complete)
	assert.Equal(t, entity.SessionStatusCompleted, dto.Status)

	rec = s.do(t, http.MethodGet, "/quiz-session/"+id+"/result?format=md", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "assessment-"+id+".md")
	assert.Contains(t, rec.Body.String(), "Sleep better")

	rec = s.do(t, http.MethodGet, "/quiz-session/"+id+"/result?format=xls", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.answer(t, id, `"again"`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelSession(t *testing.T) {
	s := newTestServer(t)
	id := s.start(t).ID

	rec := s.do(t, http.MethodPost, "/quiz-session/"+id+"/cancel", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/quiz-session/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/quiz-session/"+id+"/cancel", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetQuestions(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	g := decode[entity.QuestionGraphDTO](t, rec)
	assert.Equal(t, quiz.ReferenceStart, g.Start)
	assert.Len(t, g.Questions, len(quiz.ReferenceQuestions()))
}
