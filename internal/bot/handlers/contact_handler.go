package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewContactHandler returns the handler for the /contact command.
func NewContactHandler(deps HandlerDeps) bot.HandlerFunc {
	return contactHandler{deps}.Handle
}

type contactHandler struct {
	deps HandlerDeps
}

func (h contactHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "contact")

	if update.Message == nil {
		log.WarnContext(ctx, "Contact handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.Contact})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send contact message", "error", err, "chat_id", chatID)
	}
}
