package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":8080")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2*time.Hour, cfg.QuizCfg.SessionTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.QuizCfg.FirstQuestionDelay)
	assert.Equal(t, time.Second, cfg.QuizCfg.NextQuestionDelay)
	assert.Equal(t, 2000, cfg.QuizCfg.MaxMessageLength)
	assert.Equal(t, uint(3), cfg.ArchiveRetry.Attempts)
	assert.Equal(t, 100*time.Millisecond, cfg.CallbackConnectorCfg.Retry.Delay)
	assert.Equal(t, 10*time.Second, cfg.CallbackConnectorCfg.RequestTimeout)
	assert.Equal(t, 5, cfg.TelegramCfg.RateLimitBurst)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9000")
	t.Setenv("QUIZ_QUESTIONS_FILE", "/etc/quiz/questions.json")
	t.Setenv("QUIZ_NEXT_QUESTION_DELAY", "0s")
	t.Setenv("CALLBACK_RETRY_ATTEMPTS", "5")
	t.Setenv("TELEGRAM_SEND_RETRY_DELAY", "250ms")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "/etc/quiz/questions.json", cfg.QuizCfg.QuestionsFile)
	assert.Zero(t, cfg.QuizCfg.NextQuestionDelay)
	assert.Equal(t, uint(5), cfg.CallbackConnectorCfg.Retry.Attempts)
	assert.Equal(t, 250*time.Millisecond, cfg.TelegramCfg.SendRetry.Delay)
}

func TestParseRequiresServerAddr(t *testing.T) {
	t.Setenv("SERVER_ADDR", "")

	_, err := Parse()
	assert.Error(t, err)
}

func TestParseCollectsValidationErrors(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":8080")
	t.Setenv("QUIZ_SESSION_TTL", "10s")
	t.Setenv("QUIZ_REPLY_DELAY", "5m")
	t.Setenv("DB_MIN_CONNS", "50")

	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUIZ_SESSION_TTL")
	assert.Contains(t, err.Error(), "QUIZ_REPLY_DELAY")
	assert.Contains(t, err.Error(), "DB_MIN_CONNS")
}

func TestTelegramValidate(t *testing.T) {
	cfg := TelegramConfig{MaxConcurrentUsers: 10}
	assert.Error(t, cfg.Validate())

	cfg.BotToken = "123:abc"
	assert.NoError(t, cfg.Validate())

	cfg.MaxConcurrentUsers = 0
	assert.Error(t, cfg.Validate())
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.prod", getEnvFile("production"))
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}
