package handlers

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const clearTimeout = 30 * time.Second

// NewClearHandler returns the handler for the /clear command. Clearing is a
// two-step flow: the first call stores a pending confirmation, the second
// call within its TTL performs the wipe.
func NewClearHandler(deps HandlerDeps) bot.HandlerFunc {
	return clearHandler{deps}.Handle
}

type clearHandler struct {
	deps HandlerDeps
}

func (h clearHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "clear")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Clear handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	key := strconv.FormatInt(chatID, 10)

	if _, pending := h.deps.Confirmations.Get(key); !pending {
		h.deps.Confirmations.Set(key, "pending")
		h.reply(ctx, b, chatID, h.deps.Config.Messages.ClearConfirm, log)
		return
	}
	h.deps.Confirmations.Delete(key)

	log.InfoContext(ctx, "History wipe confirmed", "chat_id", chatID, "user_id", update.Message.From.ID)

	timeoutCtx, cancel := context.WithTimeout(ctx, clearTimeout)
	defer cancel()

	if err := h.deps.History.ClearHistory(timeoutCtx); err != nil {
		log.ErrorContext(ctx, "Failed to clear history", "error", err, "chat_id", chatID)
		h.reply(ctx, b, chatID, h.deps.Config.Messages.ClearAborted, log)
		return
	}

	h.reply(ctx, b, chatID, h.deps.Config.Messages.ClearDone, log)
}

func (h clearHandler) reply(ctx context.Context, b *bot.Bot, chatID int64, content string, log *slog.Logger) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: content})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send clear reply", "error", err, "chat_id", chatID)
	}
}
