package state

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("telegram session not found")

// TelegramSession maps a Telegram user to a live questionnaire session and
// holds the widget state of the question on screen.
type TelegramSession struct {
	UserID    int64
	ChatID    int64
	SessionID string
	StateData StateData
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StateData is the per-question UI draft. It is reset every time a new
// question is shown.
type StateData struct {
	// Question the draft belongs to
	QuestionID string

	// Slider position before "Continue" is pressed
	SliderValue int

	// Option values toggled on a multi-choice question
	Selected []string

	// Message carrying the widget keyboard, edited in place, and the entry
	// text it was rendered from
	WidgetMessageID int
	WidgetText      string

	// Confirmation for destructive actions
	PendingConfirmation string
}

// IsSelected reports whether an option value is toggled on
func (d *StateData) IsSelected(value string) bool {
	for _, v := range d.Selected {
		if v == value {
			return true
		}
	}
	return false
}

// Toggle flips an option value and reports whether it is now selected
func (d *StateData) Toggle(value string) bool {
	for i, v := range d.Selected {
		if v == value {
			d.Selected = append(d.Selected[:i], d.Selected[i+1:]...)
			return false
		}
	}
	d.Selected = append(d.Selected, value)
	return true
}

// Storage defines the interface for telegram session persistence
type Storage interface {
	// Get retrieves telegram session by user ID
	Get(ctx context.Context, userID int64) (*TelegramSession, error)

	// Set saves telegram session
	Set(ctx context.Context, session *TelegramSession) error

	// Delete removes telegram session
	Delete(ctx context.Context, userID int64) error
}
