package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/api"
	sessionapi "github.com/futig/quiz-chat/internal/api/session"
	"github.com/futig/quiz-chat/internal/config"
	"github.com/futig/quiz-chat/internal/integration/callback"
	"github.com/futig/quiz-chat/internal/pkg/formatter"
	"github.com/futig/quiz-chat/internal/pkg/validator"
	"github.com/futig/quiz-chat/internal/quiz"
	"github.com/futig/quiz-chat/internal/repository"
	"github.com/futig/quiz-chat/internal/telegram"
	"github.com/futig/quiz-chat/internal/telegram/state"
	"github.com/futig/quiz-chat/internal/usecase/session"
)

// core is what both binaries share: configuration, logging, the optional
// result archive and the session use case.
type core struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *pgxpool.Pool
	sessionUC *session.SessionUsecase
}

func buildCore(ctx context.Context) (*core, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	graph, err := loadGraph(cfg.QuizCfg, logger)
	if err != nil {
		return nil, err
	}

	var (
		db         *pgxpool.Pool
		resultRepo session.ResultRepository
	)
	if cfg.DatabaseURL != "" {
		db, err = setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}

		if err := repository.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		resultRepo = repository.NewResultPostgres(db)
	} else {
		logger.Warn("DATABASE_URL is empty, completed assessments are kept in memory only")
	}

	callbackConnector := callback.NewConnector(cfg.CallbackConnectorCfg, logger)

	q := cfg.QuizCfg
	sessionUC := session.NewUsecase(
		graph,
		session.Config{
			SessionTTL:      q.SessionTTL,
			CleanupInterval: q.CleanupInterval,
			Delays: quiz.Delays{
				FirstQuestion: q.FirstQuestionDelay,
				NextQuestion:  q.NextQuestionDelay,
				Completion:    q.CompletionDelay,
				Reply:         q.ReplyDelay,
			},
			ArchiveRetry: cfg.ArchiveRetry,
		},
		resultRepo,
		callbackConnector,
		formatter.NewFactory(),
		logger,
	)
	logger.Info("Session use case initialized",
		zap.Int("questions", graph.Len()),
		zap.Duration("session_ttl", q.SessionTTL),
		zap.Bool("archive", resultRepo != nil),
	)

	return &core{cfg: cfg, logger: logger, db: db, sessionUC: sessionUC}, nil
}

func loadGraph(cfg config.QuizConfig, logger *zap.Logger) (*quiz.Graph, error) {
	if cfg.QuestionsFile == "" {
		logger.Info("Using the built-in health assessment")
		return quiz.ReferenceGraph(), nil
	}

	graph, err := quiz.LoadGraphFile(cfg.QuestionsFile)
	if err != nil {
		return nil, fmt.Errorf("load question graph: %w", err)
	}
	logger.Info("Question graph loaded",
		zap.String("file", cfg.QuestionsFile),
		zap.String("start", graph.Start()),
		zap.Bool("has_cycle", graph.HasCycle()),
	)
	if unreachable := graph.Unreachable(); len(unreachable) > 0 {
		logger.Warn("Question graph has unreachable questions", zap.Strings("ids", unreachable))
	}
	return graph, nil
}

func (c *core) close() {
	c.sessionUC.Shutdown()
	if c.db != nil {
		c.logger.Info("Closing database connections")
		c.db.Close()
	}
}

// Build wires the HTTP API
func Build() (*App, error) {
	c, err := buildCore(context.Background())
	if err != nil {
		return nil, err
	}

	c.logger.Info("Building application",
		zap.String("environment", c.cfg.Environment),
		zap.String("server_addr", c.cfg.ServerAddr),
	)

	sessionHandler := sessionapi.NewHandler(c.sessionUC, validator.NewValidator(c.cfg.QuizCfg))
	router := api.SetupRouter(sessionHandler, c.sessionUC, c.logger)

	server := &http.Server{
		Addr:         c.cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	c.logger.Info("Application built successfully")
	return &App{server: server, core: c}, nil
}

// BuildTelegramBot wires the Telegram front end. It runs its own sessions.
func BuildTelegramBot() (*BotApp, error) {
	c, err := buildCore(context.Background())
	if err != nil {
		return nil, err
	}

	tgCfg := c.cfg.TelegramCfg
	if err := tgCfg.Validate(); err != nil {
		c.close()
		return nil, fmt.Errorf("telegram configuration: %w", err)
	}

	storage := state.NewCacheStorage(c.cfg.QuizCfg.SessionTTL, c.cfg.QuizCfg.CleanupInterval)
	bot, err := telegram.NewBot(&tgCfg, storage, c.sessionUC, tgCfg.SendRetry, c.logger)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	c.logger.Info("Telegram bot built successfully",
		zap.String("environment", c.cfg.Environment),
	)

	return &BotApp{Bot: bot, Logger: c.logger, core: c}, nil
}
