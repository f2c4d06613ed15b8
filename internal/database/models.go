package database

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds mirror the Telegram payload types the bot handles.
const (
	KindText     = "text"
	KindDocument = "document"
	KindPhoto    = "photo"
	KindAudio    = "audio"
	KindVideo    = "video"
	KindVoice    = "voice"
	KindSticker  = "sticker"
	KindLocation = "location"
	KindContact  = "contact"
)

// Message direction relative to the bot.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// Delivery status values. Outgoing messages start as StatusSent.
const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
	StatusFailed    = "failed"
)

// SenderBot is the sender id recorded on outgoing messages.
const SenderBot = "bot"

// StringList stores a list of attachment references as a JSON text column.
type StringList []string

// Value implements driver.Valuer. A nil list maps to SQL NULL.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attachment list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for TEXT and BLOB columns.
func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("failed to decode attachment list: %w", err)
	}
	return nil
}

// Message is a single chat message record. Records are immutable after
// creation; edits arrive as new records flagged IsEdited.
type Message struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	Content        string    `db:"content"`
	Kind           string    `db:"kind"`
	Direction      string    `db:"direction"`
	Status         string    `db:"status"`
	Timestamp      time.Time `db:"timestamp"`
	CreatedAt      time.Time `db:"created_at"`

	SenderID          sql.NullString `db:"sender_id"`
	SenderName        string         `db:"sender_name"`
	TelegramMessageID sql.NullInt64  `db:"telegram_message_id"`
	IsEdited          bool           `db:"is_edited"`
	EditedAt          sql.NullTime   `db:"edited_at"`
	Attachments       StringList     `db:"attachments"`
}

// Conversation groups messages by platform chat. UpdatedAt advances on every
// message and drives the most-recently-active ordering.
type Conversation struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	TelegramChatID int64     `db:"telegram_chat_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
