package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ArDangerUS/LegalFlowService/internal/database"
)

// NewMessageHandler returns the default handler for non-command messages.
// It records the incoming message, upserts the conversation, replies
// according to the message kind, and records the outgoing reply.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil || msg.From == nil {
		return
	}

	record := BuildIncomingRecord(msg)
	if record.Kind == "" {
		log.InfoContext(ctx, "Unsupported message kind", "chat_id", msg.Chat.ID, "message_id", msg.ID)
		h.reply(ctx, b, msg.Chat.ID, record.ConversationID, h.deps.Config.Messages.AckUnsupported, log)
		return
	}

	conversation := &database.Conversation{
		ID:             record.ConversationID,
		Name:           conversationName(msg.Chat),
		TelegramChatID: msg.Chat.ID,
	}
	h.deps.History.SaveConversation(ctx, conversation)
	h.deps.History.SaveMessage(ctx, &record)

	h.reply(ctx, b, msg.Chat.ID, record.ConversationID, h.replyFor(record), log)
}

// replyFor picks the response text: echo for text messages, a canned
// acknowledgement for everything else.
func (h messageHandler) replyFor(record database.Message) string {
	m := h.deps.Config.Messages
	switch record.Kind {
	case database.KindText:
		// Sanitization can reduce a whitespace-only message to nothing, and
		// the platform rejects empty sends.
		if record.Content == "" {
			return m.AckUnsupported
		}
		return record.Content
	case database.KindDocument:
		return m.AckDocument
	case database.KindPhoto:
		return m.AckPhoto
	case database.KindAudio:
		return m.AckAudio
	case database.KindVideo:
		return m.AckVideo
	case database.KindVoice:
		return m.AckVoice
	case database.KindSticker:
		return m.AckSticker
	case database.KindLocation:
		return m.AckLocation
	case database.KindContact:
		return m.AckContact
	default:
		return m.AckUnsupported
	}
}

// reply sends the response and records it as an outgoing message. A send
// failure is logged; the incoming record has already been persisted.
func (h messageHandler) reply(ctx context.Context, b *bot.Bot, chatID int64, conversationID, content string, log *slog.Logger) {
	sent, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: content})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
		return
	}

	outgoing := BuildOutgoingRecord(conversationID, content, sent)
	h.deps.History.SaveMessage(ctx, &outgoing)
}
