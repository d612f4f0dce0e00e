package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/futig/quiz-chat/internal/config"
	"github.com/futig/quiz-chat/internal/telegram/handlers"
	"github.com/futig/quiz-chat/internal/telegram/middleware"
	"github.com/futig/quiz-chat/internal/telegram/render"
)

// UpdateSource delivers updates from Telegram
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// API is what the bot needs from *tgbotapi.BotAPI
type API interface {
	handlers.BotAPI
	UpdateSource
}

// Bot represents the Telegram bot
type Bot struct {
	api         API
	cfg         *config.TelegramConfig
	commands    *handlers.CommandHandler
	callbacks   handlers.Handler
	answers     handlers.Handler
	sender      *handlers.MessageSender
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	slots       chan struct{}
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// New creates a new Telegram bot around already built handlers
func New(
	api API,
	cfg *config.TelegramConfig,
	deps handlers.Deps,
	clock clockwork.Clock,
	logger *zap.Logger,
) *Bot {
	return &Bot{
		api:         api,
		cfg:         cfg,
		commands:    handlers.NewCommandHandler(deps),
		callbacks:   handlers.NewCallbackHandler(deps),
		answers:     handlers.NewAnswerHandler(deps),
		sender:      deps.Sender,
		logger:      logger,
		loggingMW:   middleware.NewLoggingMiddleware(logger),
		recoveryMW:  middleware.NewRecoveryMiddleware(logger, api),
		rateLimitMW: middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, clock, logger, api),
		slots:       make(chan struct{}, cfg.MaxConcurrentUsers),
		stopChan:    make(chan struct{}),
	}
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx, updates)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.api.StopReceivingUpdates()
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// processUpdates handles every update in its own goroutine, at most
// MaxConcurrentUsers at a time.
func (b *Bot) processUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			b.slots <- struct{}{}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer func() {
					<-b.slots
					b.wg.Done()
				}()
				b.HandleUpdate(u)
			}(update)
		}
	}
}

// HandleUpdate processes update through middleware chain
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, b.route)
		})
	})
}

// route sends update to appropriate handler
func (b *Bot) route(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(context.Background(), b.logger)

	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		q := update.CallbackQuery
		msg := &handlers.Message{
			ChatID:       q.Message.Chat.ID,
			UserID:       q.From.ID,
			MessageID:    q.Message.MessageID,
			CallbackData: q.Data,
			CallbackID:   q.ID,
		}
		b.dispatch(ctx, b.callbacks.Handle, msg)

	case update.Message != nil && update.Message.From != nil:
		m := update.Message
		msg := &handlers.Message{
			ChatID:    m.Chat.ID,
			UserID:    m.From.ID,
			MessageID: m.MessageID,
			Text:      m.Text,
		}

		if m.IsCommand() {
			msg.Text = m.CommandArguments()
			b.handleCommand(ctx, m.Command(), msg)
			return
		}
		b.dispatch(ctx, b.answers.Handle, msg)
	}
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, command string, msg *handlers.Message) {
	ctxzap.Info(ctx, "command received",
		zap.String("command", command),
		zap.Int64("user_id", msg.UserID),
	)

	switch command {
	case "start":
		b.dispatch(ctx, b.commands.Start, msg)
	case "help":
		b.dispatch(ctx, b.commands.Help, msg)
	case "cancel":
		b.dispatch(ctx, b.commands.Cancel, msg)
	case "ask":
		b.dispatch(ctx, b.commands.Ask, msg)
	default:
		_, _ = b.sender.Send(msg.ChatID, render.ErrUnknownCommand, nil)
	}
}

func (b *Bot) dispatch(ctx context.Context, handle func(context.Context, *handlers.Message) error, msg *handlers.Message) {
	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(
		zap.Int64("user_id", msg.UserID),
		zap.Int64("chat_id", msg.ChatID),
	))

	if err := handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler error", zap.Error(err))
		_, _ = b.sender.Send(msg.ChatID, render.ClassifyError(err), nil)
	}
}
