package callback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/config"
	"github.com/futig/quiz-chat/internal/entity"
	pkgRetry "github.com/futig/quiz-chat/internal/pkg/retry"
)

func newTestConnector() *Connector {
	return NewConnector(config.CallbackConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout: time.Second,
			Token:          "secret",
		},
		Retry: pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}, zap.NewNop())
}

func TestSendEntry(t *testing.T) {
	var got entity.CallbackEvent
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := newTestConnector().Send(context.Background(), srv.URL, "s-1", &entity.CallbackEvent{
		Event: entity.CallbackEventTypeEntry,
		Data:  &entity.CallbackEntryData{SessionID: "s-1", Entry: entity.ChatEntryDTO{Text: "hi"}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.CallbackEventTypeEntry, got.Event)
	assert.NotEmpty(t, got.Timestamp)
	assert.Equal(t, "Bearer secret", header.Get("Authorization"))
	assert.Equal(t, "s-1", header.Get("X-Request-ID"))
	assert.Equal(t, "quiz-chat-webhooks/1.0", header.Get("User-Agent"))
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestConnector().Send(context.Background(), srv.URL, "s-1", &entity.CallbackEvent{
		Event: entity.CallbackEventTypeFinalResult,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	err := newTestConnector().Send(context.Background(), srv.URL, "s-1", &entity.CallbackEvent{
		Event: entity.CallbackEventTypeError,
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
