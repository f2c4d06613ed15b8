package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatusHandler returns the handler for the /status command. It reports
// the supervisor's connection snapshot and the storage mode.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")

	if update.Message == nil {
		log.WarnContext(ctx, "Status handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	status := h.deps.Status()

	storage := "cache only"
	if h.deps.History.RemoteAvailable() {
		storage = "database + cache"
	}
	connected := "no"
	if status.Connected {
		connected = "yes"
	}
	polling := "no"
	if status.Polling {
		polling = "yes"
	}

	report := fmt.Sprintf(
		"Bot: @%s\nConnected: %s\nPolling: %s\nReconnect attempts: %d\nStorage: %s",
		status.Identity, connected, polling, status.ReconnectAttempts, storage,
	)

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: report})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send status message", "error", err, "chat_id", chatID)
	}
}
