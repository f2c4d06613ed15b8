package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ArDangerUS/LegalFlowService/internal/text"
)

const historyPageSize = 10

// NewHistoryHandler returns the handler for the /history command. It shows
// the most recent messages of the current conversation.
func NewHistoryHandler(deps HandlerDeps) bot.HandlerFunc {
	return historyHandler{deps}.Handle
}

type historyHandler struct {
	deps HandlerDeps
}

func (h historyHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "history")

	if update.Message == nil {
		log.WarnContext(ctx, "History handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	conversationID := strconv.FormatInt(chatID, 10)

	messages := h.deps.History.GetMessages(ctx, conversationID, historyPageSize)
	if len(messages) == 0 {
		h.send(ctx, b, chatID, h.deps.Config.Messages.EmptyHistory, log)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Last %d messages:\n\n", len(messages))
	for _, m := range messages {
		sender := m.SenderName
		if sender == "" {
			sender = "unknown"
		}
		fmt.Fprintf(&sb, "%s  %s: %s\n",
			m.Timestamp.Local().Format("2006-01-02 15:04"),
			sender,
			text.Truncate(m.Content, 80))
	}

	h.send(ctx, b, chatID, sb.String(), log)
}

func (h historyHandler) send(ctx context.Context, b *bot.Bot, chatID int64, content string, log *slog.Logger) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: content})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send history message", "error", err, "chat_id", chatID)
	}
}
