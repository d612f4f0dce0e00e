package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/config"
	pkgRetry "github.com/futig/quiz-chat/internal/pkg/retry"
	"github.com/futig/quiz-chat/internal/telegram/bot"
	"github.com/futig/quiz-chat/internal/telegram/handlers"
	"github.com/futig/quiz-chat/internal/telegram/keyboard"
	"github.com/futig/quiz-chat/internal/telegram/state"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot authorizes against the Telegram API and wires the handlers
func NewBot(
	cfg *config.TelegramConfig,
	storage state.Storage,
	sessionUC handlers.SessionUsecase,
	sendRetry pkgRetry.RetryConfig,
	logger *zap.Logger,
) (Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	clock := clockwork.NewRealClock()
	b := bot.New(api, cfg, NewDeps(api, storage, sessionUC, sendRetry, clock, logger), clock, logger)

	logger.Info("telegram bot initialized successfully")
	return b, nil
}

// NewDeps builds the dependencies shared by the handlers
func NewDeps(
	api handlers.BotAPI,
	storage state.Storage,
	sessionUC handlers.SessionUsecase,
	sendRetry pkgRetry.RetryConfig,
	clock clockwork.Clock,
	logger *zap.Logger,
) handlers.Deps {
	sender := handlers.NewMessageSender(api, sendRetry, logger)
	stateManager := state.NewManager(storage, clock)
	kb := keyboard.NewBuilder()

	return handlers.Deps{
		Sender:       sender,
		StateManager: stateManager,
		SessionUC:    sessionUC,
		Keyboard:     kb,
		Presenter:    handlers.NewPresenter(sender, stateManager, kb, logger),
	}
}
