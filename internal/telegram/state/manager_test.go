package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(NewCacheStorage(time.Hour, time.Minute), clockwork.NewFakeClock())
}

func TestBindKeepsWidgetWrittenBeforeIt(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	// the first question can be presented before the session id is known
	require.NoError(t, m.ResetWidget(ctx, 1, 10, "age", "Select your age", 59, 100))
	require.NoError(t, m.Bind(ctx, 1, 10, "s-1"))

	s, err := m.GetSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "s-1", s.SessionID)
	assert.Equal(t, int64(10), s.ChatID)
	assert.Equal(t, "age", s.StateData.QuestionID)
	assert.Equal(t, 59, s.StateData.SliderValue)
	assert.Equal(t, 100, s.StateData.WidgetMessageID)
}

func TestSessionIDWithoutMapping(t *testing.T) {
	m := newTestManager()

	id, err := m.SessionID(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestUpdate(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	_, err := m.Update(ctx, 1, func(*StateData) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Bind(ctx, 1, 10, "s-1"))
	require.NoError(t, m.ResetWidget(ctx, 1, 10, "nutrition", "Goals", 0, 5))

	data, err := m.Update(ctx, 1, func(d *StateData) error {
		d.Toggle("energy")
		d.Toggle("general")
		d.Toggle("energy")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"general"}, data.Selected)

	// a failing update is not stored
	boom := errors.New("boom")
	_, err = m.Update(ctx, 1, func(d *StateData) error {
		d.Selected = nil
		return boom
	})
	assert.ErrorIs(t, err, boom)

	s, err := m.GetSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"general"}, s.StateData.Selected)
	assert.True(t, s.StateData.IsSelected("general"))
}

func TestResetWidgetKeepsPendingConfirmation(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Bind(ctx, 1, 10, "s-1"))
	_, err := m.Update(ctx, 1, func(d *StateData) error {
		d.PendingConfirmation = "cancel"
		d.Selected = []string{"x"}
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, m.ResetWidget(ctx, 1, 10, "goals", "Goals", 0, 7))

	s, err := m.GetSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "cancel", s.StateData.PendingConfirmation)
	assert.Empty(t, s.StateData.Selected)
}
