package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/entity"
	"github.com/futig/quiz-chat/internal/pkg/logger"
	"github.com/futig/quiz-chat/internal/pkg/response"
	"github.com/futig/quiz-chat/internal/pkg/validator"
	sessionuc "github.com/futig/quiz-chat/internal/usecase/session"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	usecase   SessionUsecase
	validator *validator.Validator
}

func NewHandler(usecase SessionUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// StartSession handles POST /quiz-session - Start new session
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	var req entity.StartSessionRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateStartSession(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	session, err := h.usecase.StartSession(ctx, sessionuc.StartOptions{CallbackURL: req.CallbackURL})
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, sessionuc.SessionToDTO(session))
}

// GetSession handles GET /quiz-session/{id} - Get session state
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "GetSession")

	ctxzap.Debug(ctx, "fetching session")

	session, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, sessionuc.SessionToDTO(session))
}

// GetCurrentQuestion handles GET /quiz-session/{id}/question
func (h *Handler) GetCurrentQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "GetCurrentQuestion")

	q, err := h.usecase.CurrentQuestion(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if q == nil {
		response.NoContent(w)
		return
	}

	response.Success(w, sessionuc.QuestionToDTO(q))
}

// SubmitAnswer handles POST /quiz-session/{id}/answer
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "SubmitAnswer")

	var req entity.SubmitAnswerRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSubmitAnswer(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	var raw any
	if err := json.Unmarshal(req.Value, &raw); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid answer value", err)
		return
	}

	session, err := h.usecase.SubmitAnswer(ctx, sessionID, raw)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "answer accepted", zap.String("next_question_id", session.State.CurrentQuestionID))
	response.Success(w, sessionuc.SessionToDTO(session))
}

// SubmitMessage handles POST /quiz-session/{id}/message
func (h *Handler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "SubmitMessage")

	var req entity.SubmitMessageRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSubmitMessage(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	session, err := h.usecase.SubmitMessage(ctx, sessionID, req.Text)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, sessionuc.SessionToDTO(session))
}

// GetSessionResult handles GET /quiz-session/{id}/result - Download the assessment
func (h *Handler) GetSessionResult(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "GetSessionResult")

	format, err := h.validator.ParseResultFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "format must be one of: markdown, docx, pdf", err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("format", string(format)))

	result, err := h.usecase.ExportResult(ctx, sessionID, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session result exported", zap.Int("bytes", len(result.Data)))
	response.Attachment(w, result.ContentType, result.Filename, result.Data)
}

// CancelSession handles POST /quiz-session/{id}/cancel - Cancel session
func (h *Handler) CancelSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "CancelSession")

	if err := h.usecase.CancelSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

// GetQuestions handles GET /questions - The question graph
func (h *Handler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	response.Success(w, sessionuc.GraphToDTO(h.usecase.Graph()))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}

	response.Error(w, status, entity.ErrorResponse{Message: message + ": " + err.Error()})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	var invalid *entity.InvalidAnswerError
	switch {
	case errors.As(err, &invalid):
		ctxzap.Info(ctx, "invalid answer", zap.Error(err))
		response.Error(w, http.StatusUnprocessableEntity, entity.ErrorResponse{
			Message:    invalid.Detail,
			Reason:     string(invalid.Reason),
			QuestionID: invalid.QuestionID,
		})
	case errors.Is(err, entity.ErrSessionNotFound), errors.Is(err, entity.ErrResultNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	case errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrEmptyMessage),
		errors.Is(err, entity.ErrUnsupportedFormat):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrSessionCompleted), errors.Is(err, entity.ErrSessionNotCompleted),
		errors.Is(err, entity.ErrNoCurrentQuestion), errors.Is(err, entity.ErrSessionClosed):
		h.respondError(ctx, w, http.StatusConflict, "invalid session state", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
