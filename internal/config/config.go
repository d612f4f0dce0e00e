package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pkgRetry "github.com/futig/quiz-chat/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration. The result archive is disabled when DATABASE_URL is empty.
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	QuizCfg QuizConfig `envPrefix:"QUIZ_"`

	CallbackConnectorCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	// Retry policy for writing completed assessments
	ArchiveRetry pkgRetry.RetryConfig `envPrefix:"ARCHIVE_RETRY_"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// QuizConfig controls the questionnaire and the pacing of system entries
type QuizConfig struct {
	// JSON question graph; the built-in health assessment is used when empty
	QuestionsFile      string        `env:"QUESTIONS_FILE"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	CleanupInterval    time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
	FirstQuestionDelay time.Duration `env:"FIRST_QUESTION_DELAY" envDefault:"1500ms"`
	NextQuestionDelay  time.Duration `env:"NEXT_QUESTION_DELAY" envDefault:"1s"`
	CompletionDelay    time.Duration `env:"COMPLETION_DELAY" envDefault:"1s"`
	ReplyDelay         time.Duration `env:"REPLY_DELAY" envDefault:"1500ms"`
	MaxMessageLength   int           `env:"MAX_MESSAGE_LENGTH" envDefault:"2000"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	MaxConcurrentUsers int    `env:"MAX_CONCURRENT_USERS" envDefault:"100"` // updates handled at once
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds

	// Retry policy for question messages
	SendRetry pkgRetry.RetryConfig `envPrefix:"SEND_RETRY_"`
}

type CallbackConnectorConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"10s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"5s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"30s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"10s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment and validates it.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	q := cfg.QuizCfg
	if q.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("QUIZ_SESSION_TTL must be at least 1m, got %s", q.SessionTTL))
	}

	delays := map[string]time.Duration{
		"QUIZ_FIRST_QUESTION_DELAY": q.FirstQuestionDelay,
		"QUIZ_NEXT_QUESTION_DELAY":  q.NextQuestionDelay,
		"QUIZ_COMPLETION_DELAY":     q.CompletionDelay,
		"QUIZ_REPLY_DELAY":          q.ReplyDelay,
	}
	for name, d := range delays {
		if d < 0 || d > time.Minute {
			errors = append(errors, fmt.Sprintf("%s must be between 0 and 1m, got %s", name, d))
		}
	}

	if q.MaxMessageLength < 1 || q.MaxMessageLength > 10000 {
		errors = append(errors, fmt.Sprintf("QUIZ_MAX_MESSAGE_LENGTH must be between 1 and 10000, got %d", q.MaxMessageLength))
	}

	// Validate Telegram configuration
	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	// Validate Database configuration
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Validate checks the settings the Telegram bot cannot run without
func (c TelegramConfig) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.MaxConcurrentUsers < 1 {
		return fmt.Errorf("TELEGRAM_MAX_CONCURRENT_USERS must be positive, got %d", c.MaxConcurrentUsers)
	}
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
