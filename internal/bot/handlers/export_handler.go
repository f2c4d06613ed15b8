package handlers

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ArDangerUS/LegalFlowService/internal/export"
)

const exportLimit = 500

// NewExportHandler returns the handler for the /export command. It sends the
// conversation history back as a JSON document.
func NewExportHandler(deps HandlerDeps) bot.HandlerFunc {
	return exportHandler{deps}.Handle
}

type exportHandler struct {
	deps HandlerDeps
}

func (h exportHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "export")

	if update.Message == nil {
		log.WarnContext(ctx, "Export handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	conversationID := strconv.FormatInt(chatID, 10)

	messages := h.deps.History.GetMessages(ctx, conversationID, exportLimit)
	if len(messages) == 0 {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.EmptyHistory})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send empty history message", "error", err, "chat_id", chatID)
		}
		return
	}

	data, err := export.MessagesToJSON(messages)
	if err != nil {
		log.ErrorContext(ctx, "Failed to render export", "error", err, "chat_id", chatID)
		_, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.GeneralError})
		if sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	filename := fmt.Sprintf("history_%s_%s.json", conversationID, time.Now().UTC().Format("20060102_150405"))
	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(data)},
		Caption:  fmt.Sprintf("History export, %d messages", len(messages)),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send export document", "error", err, "chat_id", chatID)
		return
	}
	log.InfoContext(ctx, "History exported", "chat_id", chatID, "messages", len(messages))
}
