// Package telegram wraps the go-telegram/bot client behind the narrow
// surface the rest of the service uses, and handles handler registration.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ErrStreamStopped is returned by Run when the update stream ends while the
// context is still live. The supervisor treats it as a polling failure.
var ErrStreamStopped = errors.New("update stream stopped unexpectedly")

// Client wraps a *bot.Bot. Identity retrieval is deferred to the
// supervisor's Initialize step, so the bot is created with WithSkipGetMe.
type Client struct {
	bot    *bot.Bot
	logger *slog.Logger
}

// NewClient creates the Telegram client. Extra options (middlewares, default
// handler) are appended after WithSkipGetMe.
func NewClient(token string, logger *slog.Logger, opts ...bot.Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_client")

	options := append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(token, options...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully")
	return &Client{bot: b, logger: log}, nil
}

// Bot exposes the underlying bot for handler registration.
func (c *Client) Bot() *bot.Bot {
	return c.bot
}

// GetMe fetches the bot's own identity.
func (c *Client) GetMe(ctx context.Context) (*models.User, error) {
	user, err := c.bot.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bot identity: %w", err)
	}
	return user, nil
}

// DeleteWebhook removes any configured webhook so long polling can take
// over, optionally dropping updates queued while the bot was offline.
func (c *Client) DeleteWebhook(ctx context.Context, dropPendingUpdates bool) error {
	ok, err := c.bot.DeleteWebhook(ctx, &bot.DeleteWebhookParams{
		DropPendingUpdates: dropPendingUpdates,
	})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	if !ok {
		return fmt.Errorf("webhook deletion was not confirmed")
	}
	return nil
}

// SetCommands publishes the bot's command list.
func (c *Client) SetCommands(ctx context.Context, commands []models.BotCommand) error {
	ok, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands})
	if err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	if !ok {
		return fmt.Errorf("command registration was not confirmed")
	}
	return nil
}

// SendText sends a plain text message to the chat.
func (c *Client) SendText(ctx context.Context, chatID int64, content string) (*models.Message, error) {
	msg, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return msg, nil
}

// SendDocument uploads a file to the chat.
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, data io.Reader, caption string) error {
	_, err := c.bot.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: filename, Data: data},
		Caption:  caption,
	})
	if err != nil {
		return fmt.Errorf("failed to send document to chat %d: %w", chatID, err)
	}
	return nil
}

// Run blocks on the long-polling update stream until ctx is done. Returning
// while the context is still live is a polling failure.
func (c *Client) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "Starting update stream")
	c.bot.Start(ctx)
	if ctx.Err() == nil {
		return ErrStreamStopped
	}
	c.logger.InfoContext(ctx, "Update stream stopped")
	return nil
}
