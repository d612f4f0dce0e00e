package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	pkgRetry "github.com/futig/quiz-chat/internal/pkg/retry"
)

// MessageSender provides centralized message sending functionality
type MessageSender struct {
	bot    BotAPI
	retry  pkgRetry.RetryConfig
	logger *zap.Logger
}

// NewMessageSender creates a new MessageSender. Critical messages are
// retried according to retry.
func NewMessageSender(bot BotAPI, retry pkgRetry.RetryConfig, logger *zap.Logger) *MessageSender {
	return &MessageSender{
		bot:    bot,
		retry:  retry,
		logger: logger,
	}
}

// Send sends a message to the specified chat and returns its id
func (s *MessageSender) Send(chatID int64, text string, markup any) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	sent, err := s.bot.Send(msg)
	if err != nil {
		s.logger.Error("failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		return 0, err
	}

	return sent.MessageID, nil
}

// SendCritical sends a message that must be delivered, such as a question
// widget, retrying on failure.
func (s *MessageSender) SendCritical(ctx context.Context, chatID int64, text string, markup any) (int, error) {
	var id int
	err := s.retry.Do(ctx, func(context.Context) error {
		var err error
		id, err = s.Send(chatID, text, markup)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("send critical message: %w", err)
	}
	return id, nil
}

// EditText replaces the text and keyboard of a sent message
func (s *MessageSender) EditText(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	if _, err := s.bot.Request(edit); err != nil {
		return fmt.Errorf("edit message text: %w", err)
	}
	return nil
}

// EditKeyboard replaces the keyboard of a sent message
func (s *MessageSender) EditKeyboard(chatID int64, messageID int, markup tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, markup)
	if _, err := s.bot.Request(edit); err != nil {
		return fmt.Errorf("edit message keyboard: %w", err)
	}
	return nil
}

// RemoveKeyboard strips the keyboard off an answered widget
func (s *MessageSender) RemoveKeyboard(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}

	edit := tgbotapi.EditMessageReplyMarkupConfig{
		BaseEdit: tgbotapi.BaseEdit{ChatID: chatID, MessageID: messageID},
	}
	if _, err := s.bot.Request(edit); err != nil {
		s.logger.Debug("failed to remove keyboard",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
		)
	}
}

// SendDocument sends a file
func (s *MessageSender) SendDocument(chatID int64, filename string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	if _, err := s.bot.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

// AnswerCallback answers a callback query, optionally with a toast
func (s *MessageSender) AnswerCallback(callbackID, text string) {
	if callbackID == "" {
		return
	}

	if _, err := s.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		s.logger.Error("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}

// Typing shows the typing indicator until the next message arrives
func (s *MessageSender) Typing(chatID int64) {
	if _, err := s.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		s.logger.Warn("failed to send typing action",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}
