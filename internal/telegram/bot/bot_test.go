package bot_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/config"
	"github.com/futig/quiz-chat/internal/pkg/formatter"
	pkgRetry "github.com/futig/quiz-chat/internal/pkg/retry"
	"github.com/futig/quiz-chat/internal/quiz"
	"github.com/futig/quiz-chat/internal/scheduler"
	"github.com/futig/quiz-chat/internal/telegram"
	"github.com/futig/quiz-chat/internal/telegram/bot"
	"github.com/futig/quiz-chat/internal/telegram/keyboard"
	"github.com/futig/quiz-chat/internal/telegram/render"
	"github.com/futig/quiz-chat/internal/telegram/state"
	sessionuc "github.com/futig/quiz-chat/internal/usecase/session"
)

const (
	userID = int64(7)
	chatID = int64(70)
)

type sentMessage struct {
	ID     int
	Text   string
	Markup *tgbotapi.InlineKeyboardMarkup
}

type fakeAPI struct {
	mu        sync.Mutex
	nextID    int
	messages  []sentMessage
	documents []tgbotapi.DocumentConfig
	requests  []tgbotapi.Chattable
}

func (a *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextID++
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		m := sentMessage{ID: a.nextID, Text: v.Text}
		if kb, ok := v.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
			m.Markup = &kb
		}
		a.messages = append(a.messages, m)
	case tgbotapi.DocumentConfig:
		a.documents = append(a.documents, v)
	}
	return tgbotapi.Message{MessageID: a.nextID}, nil
}

func (a *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (a *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (a *fakeAPI) StopReceivingUpdates() {}

func (a *fakeAPI) lastMessage(t *testing.T) sentMessage {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	require.NotEmpty(t, a.messages)
	return a.messages[len(a.messages)-1]
}

func (a *fakeAPI) texts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.messages))
	for _, m := range a.messages {
		out = append(out, m.Text)
	}
	return out
}

func (a *fakeAPI) lastToast() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.requests) - 1; i >= 0; i-- {
		if cb, ok := a.requests[i].(tgbotapi.CallbackConfig); ok {
			return cb.Text
		}
	}
	return ""
}

func (a *fakeAPI) lastEdit() (tgbotapi.EditMessageTextConfig, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.requests) - 1; i >= 0; i-- {
		if e, ok := a.requests[i].(tgbotapi.EditMessageTextConfig); ok {
			return e, true
		}
	}
	return tgbotapi.EditMessageTextConfig{}, false
}

type harness struct {
	bot   *bot.Bot
	api   *fakeAPI
	queue *scheduler.Queue
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	queue := scheduler.NewQueue(clock)
	logger := zap.NewNop()

	uc := sessionuc.NewUsecase(quiz.ReferenceGraph(),
		sessionuc.Config{SessionTTL: time.Hour, Delays: quiz.DefaultDelays()},
		nil, nil, formatter.NewFactory(), logger,
		sessionuc.WithClock(clock),
		sessionuc.WithScheduler(queue),
	)

	api := &fakeAPI{}
	cfg := &config.TelegramConfig{
		RateLimitPerMinute: 60,
		RateLimitBurst:     20,
		MaxConcurrentUsers: 1,
		ShutdownTimeout:    1,
	}
	deps := telegram.NewDeps(api, state.NewCacheStorage(time.Hour, time.Minute), uc,
		pkgRetry.RetryConfig{Attempts: 1}, clock, logger)

	return &harness{
		bot:   bot.New(api, cfg, deps, clock, logger),
		api:   api,
		queue: queue,
	}
}

func (h *harness) text(text string) {
	h.bot.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}})
	h.queue.RunAll()
}

func (h *harness) command(text string) {
	name := strings.Fields(text)[0]
	h.bot.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: userID},
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}})
	h.queue.RunAll()
}

func (h *harness) press(messageID int, data string) {
	h.bot.HandleUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}})
	h.queue.RunAll()
}

func TestFullAssessmentOverTelegram(t *testing.T) {
	h := newHarness(t)

	h.command("/start")
	require.Contains(t, h.api.texts(), quiz.WelcomeText)

	age := h.api.lastMessage(t)
	assert.Contains(t, age.Text, "Select your age")
	assert.Contains(t, age.Text, "Age: 59")
	require.NotNil(t, age.Markup)

	h.press(age.ID, "sl:age:10")
	edit, ok := h.api.lastEdit()
	require.True(t, ok)
	assert.Contains(t, edit.Text, "Age: 69")

	h.press(age.ID, "done:age")
	weight := h.api.lastMessage(t)
	assert.Contains(t, weight.Text, "What is your current weight?")

	h.text("a lot")
	assert.Contains(t, h.api.lastMessage(t).Text, "Please enter a number")

	h.text("160")
	activity := h.api.lastMessage(t)
	assert.Contains(t, activity.Text, "activity level")

	h.press(activity.ID, "opt:activity:2")
	nutrition := h.api.lastMessage(t)
	assert.Contains(t, nutrition.Text, "nutrition goals")

	h.press(nutrition.ID, "done:nutrition")
	assert.Equal(t, "❌ This question needs an answer.", h.api.lastMessage(t).Text)

	h.press(nutrition.ID, "tgl:nutrition:2")
	assert.Equal(t, render.ToastSelected, h.api.lastToast())

	h.press(nutrition.ID, "done:nutrition")
	conditions := h.api.lastMessage(t)
	assert.Contains(t, conditions.Text, "conditions")

	// buttons of an earlier question no longer work
	h.press(activity.ID, "opt:activity:0")
	assert.Equal(t, render.ToastStale, h.api.lastToast())

	h.press(conditions.ID, "done:conditions")
	checkup := h.api.lastMessage(t)
	h.press(checkup.ID, "opt:checkup:1")

	h.text("Sleep better")
	texts := h.api.texts()
	assert.Contains(t, texts, quiz.CompletionText)

	result := h.api.lastMessage(t)
	assert.Equal(t, render.MsgResultReady, result.Text)
	require.NotNil(t, result.Markup)

	h.press(result.ID, keyboard.EncodeCallback(keyboard.ActionDownload, "markdown"))
	require.Len(t, h.api.documents, 1)
	file, ok := h.api.documents[0].File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(file.Name, ".md"))
	assert.Contains(t, string(file.Bytes), "Sleep better")
}

func TestSideChannel(t *testing.T) {
	h := newHarness(t)
	h.command("/start")
	age := h.api.lastMessage(t)

	h.command("/ask")
	assert.Equal(t, render.MsgAskUsage, h.api.lastMessage(t).Text)

	// free text on a slider question is not an answer
	h.text("why do you need this?")
	reply := h.api.lastMessage(t)
	assert.Contains(t, reply.Text, "Thanks for your question")
	assert.Nil(t, reply.Markup)

	h.press(age.ID, "help:age")
	assert.Contains(t, h.api.lastMessage(t).Text, "Age helps us provide recommendations")

	h.command("/ask can you explain this one?")
	assert.Contains(t, h.api.lastMessage(t).Text, "Age helps us provide recommendations")

	// still on the same question
	h.press(age.ID, "done:age")
	assert.Contains(t, h.api.lastMessage(t).Text, "What is your current weight?")
}

func TestCancelNeedsConfirmation(t *testing.T) {
	h := newHarness(t)

	h.command("/cancel")
	assert.Equal(t, render.ErrNoSession, h.api.lastMessage(t).Text)

	h.command("/start")
	h.command("/cancel")
	confirm := h.api.lastMessage(t)
	assert.Equal(t, render.MsgConfirmCancel, confirm.Text)

	h.press(confirm.ID, "confirm:continue")
	assert.Equal(t, render.MsgCancelAborted, h.api.lastMessage(t).Text)

	h.command("/cancel")
	confirm = h.api.lastMessage(t)
	h.press(confirm.ID, "confirm:cancel")
	assert.Equal(t, render.MsgSessionCanceled, h.api.lastMessage(t).Text)

	h.text("hello?")
	assert.Equal(t, render.ErrNoSession, h.api.lastMessage(t).Text)
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)

	h.command("/frobnicate")
	assert.Equal(t, render.ErrUnknownCommand, h.api.lastMessage(t).Text)
}

func TestStopIsIdempotent(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.bot.Stop())
	require.NoError(t, h.bot.Stop())
}
