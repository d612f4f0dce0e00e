package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/futig/quiz-chat/internal/entity"
)

// ResultRepository archives completed assessments
type ResultRepository interface {
	Save(ctx context.Context, result *entity.AssessmentResult) error
	Get(ctx context.Context, sessionID string) (*entity.AssessmentResult, error)
}

var _ ResultRepository = &ResultPostgres{}

// ResultPostgres implements ResultRepository using PostgreSQL
type ResultPostgres struct {
	db *pgxpool.Pool
}

func NewResultPostgres(db *pgxpool.Pool) *ResultPostgres {
	return &ResultPostgres{db: db}
}

const saveResultQuery = `
INSERT INTO assessment_results (session_id, answers, transcript, completed_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (session_id) DO UPDATE
SET answers = EXCLUDED.answers,
    transcript = EXCLUDED.transcript,
    completed_at = EXCLUDED.completed_at`

const getResultQuery = `
SELECT session_id, answers, transcript, completed_at
FROM assessment_results
WHERE session_id = $1`

// Save stores the result, replacing an earlier copy for the same session
func (r *ResultPostgres) Save(ctx context.Context, result *entity.AssessmentResult) error {
	id, err := toPgUUID(result.SessionID)
	if err != nil {
		return err
	}

	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	transcript, err := json.Marshal(result.Transcript)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}

	completedAt := pgtype.Timestamptz{Time: result.CompletedAt, Valid: true}

	if _, err := r.db.Exec(ctx, saveResultQuery, id, answers, transcript, completedAt); err != nil {
		return fmt.Errorf("save assessment result: %w", err)
	}

	return nil
}

// Get loads the archived result of a session
func (r *ResultPostgres) Get(ctx context.Context, sessionID string) (*entity.AssessmentResult, error) {
	id, err := toPgUUID(sessionID)
	if err != nil {
		return nil, err
	}

	var (
		dbID        pgtype.UUID
		answers     []byte
		transcript  []byte
		completedAt pgtype.Timestamptz
	)

	err = r.db.QueryRow(ctx, getResultQuery, id).Scan(&dbID, &answers, &transcript, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", entity.ErrResultNotFound, sessionID)
		}
		return nil, fmt.Errorf("query assessment result: %w", err)
	}

	result := &entity.AssessmentResult{
		SessionID:   uuid.UUID(dbID.Bytes).String(),
		CompletedAt: completedAt.Time,
	}

	if err := json.Unmarshal(answers, &result.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	if err := json.Unmarshal(transcript, &result.Transcript); err != nil {
		return nil, fmt.Errorf("unmarshal transcript: %w", err)
	}

	return result, nil
}

func toPgUUID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: invalid session ID: %v", entity.ErrInvalidParameter, err)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}
