package handlers

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"github.com/ArDangerUS/LegalFlowService/internal/database"
	"github.com/ArDangerUS/LegalFlowService/internal/text"
)

// classifyMessage maps a Telegram message to its kind, stored content, and
// attachment references.
func classifyMessage(msg *models.Message) (kind, content string, attachments database.StringList) {
	switch {
	case msg.Text != "":
		return database.KindText, text.Sanitize(msg.Text), nil
	case msg.Document != nil:
		return database.KindDocument, msg.Caption, database.StringList{msg.Document.FileID}
	case len(msg.Photo) > 0:
		// Telegram sends several sizes of the same photo; keep the largest.
		return database.KindPhoto, msg.Caption, database.StringList{msg.Photo[len(msg.Photo)-1].FileID}
	case msg.Audio != nil:
		return database.KindAudio, msg.Caption, database.StringList{msg.Audio.FileID}
	case msg.Video != nil:
		return database.KindVideo, msg.Caption, database.StringList{msg.Video.FileID}
	case msg.Voice != nil:
		return database.KindVoice, msg.Caption, database.StringList{msg.Voice.FileID}
	case msg.Sticker != nil:
		return database.KindSticker, "", database.StringList{msg.Sticker.FileID}
	case msg.Location != nil:
		return database.KindLocation, fmt.Sprintf("%f,%f", msg.Location.Latitude, msg.Location.Longitude), nil
	case msg.Contact != nil:
		return database.KindContact, msg.Contact.PhoneNumber + " " + msg.Contact.FirstName, nil
	default:
		return "", "", nil
	}
}

// BuildIncomingRecord turns a received Telegram message into an immutable
// message record with a fresh identifier and a UTC timestamp.
func BuildIncomingRecord(msg *models.Message) database.Message {
	kind, content, attachments := classifyMessage(msg)

	record := database.Message{
		ID:                uuid.NewString(),
		ConversationID:    strconv.FormatInt(msg.Chat.ID, 10),
		Content:           content,
		Kind:              kind,
		Direction:         database.DirectionIncoming,
		Status:            database.StatusDelivered,
		Timestamp:         time.Unix(int64(msg.Date), 0).UTC(),
		SenderName:        text.SenderDisplayName(msg.From),
		TelegramMessageID: sql.NullInt64{Int64: int64(msg.ID), Valid: true},
		Attachments:       attachments,
	}
	if msg.From != nil {
		record.SenderID = sql.NullString{String: strconv.FormatInt(msg.From.ID, 10), Valid: true}
	}
	if msg.EditDate != 0 {
		record.IsEdited = true
		record.EditedAt = sql.NullTime{Time: time.Unix(int64(msg.EditDate), 0).UTC(), Valid: true}
	}
	return record
}

// BuildOutgoingRecord records a reply the bot sent. Outgoing messages start
// in status sent; the bot never observes its own delivery receipts.
func BuildOutgoingRecord(conversationID, content string, sent *models.Message) database.Message {
	record := database.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Content:        content,
		Kind:           database.KindText,
		Direction:      database.DirectionOutgoing,
		Status:         database.StatusSent,
		Timestamp:      time.Now().UTC(),
		SenderID:       sql.NullString{String: database.SenderBot, Valid: true},
		SenderName:     "bot",
	}
	if sent != nil {
		record.TelegramMessageID = sql.NullInt64{Int64: int64(sent.ID), Valid: true}
		if sent.Date != 0 {
			record.Timestamp = time.Unix(int64(sent.Date), 0).UTC()
		}
	}
	return record
}

// conversationName derives a display name for the chat.
func conversationName(chat models.Chat) string {
	switch {
	case chat.Title != "":
		return chat.Title
	case chat.FirstName != "" && chat.LastName != "":
		return chat.FirstName + " " + chat.LastName
	case chat.FirstName != "":
		return chat.FirstName
	case chat.Username != "":
		return "@" + chat.Username
	default:
		return strconv.FormatInt(chat.ID, 10)
	}
}
