package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSettingsHandler returns the handler for the /settings command. It shows
// the active limits, read-only.
func NewSettingsHandler(deps HandlerDeps) bot.HandlerFunc {
	return settingsHandler{deps}.Handle
}

type settingsHandler struct {
	deps HandlerDeps
}

func (h settingsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "settings")

	if update.Message == nil {
		log.WarnContext(ctx, "Settings handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	cfg := h.deps.Config

	report := fmt.Sprintf(
		"Rate limit: %d messages per %s\nCache: %d entries, TTL %s\nReconnect: up to %d attempts, base delay %s",
		cfg.RateLimit.MaxMessages, cfg.RateLimit.Window,
		cfg.Cache.MaxSize, cfg.Cache.TTL,
		cfg.Supervisor.MaxReconnectAttempts, cfg.Supervisor.ReconnectDelay,
	)

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: report})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send settings message", "error", err, "chat_id", chatID)
	}
}
