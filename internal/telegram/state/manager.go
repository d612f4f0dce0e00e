package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
)

// Manager manages telegram sessions
type Manager struct {
	storage Storage
	clock   clockwork.Clock

	// Serializes read-modify-write cycles; button presses of one user and
	// entries posted by the session timers can arrive concurrently.
	mu sync.Mutex
}

// NewManager creates a new state manager
func NewManager(storage Storage, clock clockwork.Clock) *Manager {
	return &Manager{
		storage: storage,
		clock:   clock,
	}
}

// GetSession retrieves telegram session from storage
func (m *Manager) GetSession(ctx context.Context, userID int64) (*TelegramSession, error) {
	session, err := m.storage.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get telegram session from storage: %w", err)
	}

	return session, nil
}

// SessionID returns the questionnaire session of a user, or "" when there is none
func (m *Manager) SessionID(ctx context.Context, userID int64) (string, error) {
	session, err := m.storage.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get telegram session from storage: %w", err)
	}
	return session.SessionID, nil
}

// Bind points a user at a questionnaire session. Widget state already
// written for the session is kept.
func (m *Manager) Bind(ctx context.Context, userID, chatID int64, sessionID string) error {
	return m.upsert(ctx, userID, chatID, func(s *TelegramSession) {
		s.SessionID = sessionID
	})
}

// ResetWidget starts a fresh draft for a newly shown question
func (m *Manager) ResetWidget(ctx context.Context, userID, chatID int64, questionID, text string, sliderValue, messageID int) error {
	return m.upsert(ctx, userID, chatID, func(s *TelegramSession) {
		s.StateData = StateData{
			QuestionID:          questionID,
			SliderValue:         sliderValue,
			WidgetMessageID:     messageID,
			WidgetText:          text,
			PendingConfirmation: s.StateData.PendingConfirmation,
		}
	})
}

func (m *Manager) upsert(ctx context.Context, userID, chatID int64, fn func(*TelegramSession)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	session, err := m.storage.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		session = &TelegramSession{UserID: userID, CreatedAt: now}
	case err != nil:
		return fmt.Errorf("get telegram session from storage: %w", err)
	}

	session.ChatID = chatID
	session.UpdatedAt = now
	fn(session)

	if err := m.storage.Set(ctx, session); err != nil {
		return fmt.Errorf("save telegram session to storage: %w", err)
	}
	return nil
}

// DeleteSession removes telegram session from storage
func (m *Manager) DeleteSession(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete telegram session from storage: %w", err)
	}

	return nil
}

// Update applies fn to the state data of a user and stores the result. The
// modified copy is returned.
func (m *Manager) Update(ctx context.Context, userID int64, fn func(*StateData) error) (*StateData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := fn(&session.StateData); err != nil {
		return nil, err
	}

	session.UpdatedAt = m.clock.Now()
	if err := m.storage.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("save telegram session to storage: %w", err)
	}

	data := session.StateData
	return &data, nil
}
