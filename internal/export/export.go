// Package export renders message history into portable formats for the
// /export command.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ArDangerUS/LegalFlowService/internal/database"
)

// record is the flat shape shared by the JSON and CSV renderings.
type record struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	SenderName     string `json:"sender_name"`
	Content        string `json:"content"`
	Kind           string `json:"kind"`
	Direction      string `json:"direction"`
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	IsEdited       bool   `json:"is_edited"`
}

func toRecord(m database.Message) record {
	senderID := ""
	if m.SenderID.Valid {
		senderID = m.SenderID.String
	}
	return record{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       senderID,
		SenderName:     m.SenderName,
		Content:        m.Content,
		Kind:           m.Kind,
		Direction:      m.Direction,
		Status:         m.Status,
		Timestamp:      m.Timestamp.UTC().Format(time.RFC3339),
		IsEdited:       m.IsEdited,
	}
}

// MessagesToJSON renders messages as an indented JSON array.
func MessagesToJSON(messages []database.Message) ([]byte, error) {
	records := make([]record, 0, len(messages))
	for _, m := range messages {
		records = append(records, toRecord(m))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode messages as JSON: %w", err)
	}
	return data, nil
}

// MessagesToCSV renders messages as CSV with a header row. An empty slice
// yields only the header.
func MessagesToCSV(messages []database.Message) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"id", "conversation_id", "sender_id", "sender_name", "content",
		"kind", "direction", "status", "timestamp", "is_edited",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, m := range messages {
		r := toRecord(m)
		row := []string{
			r.ID, r.ConversationID, r.SenderID, r.SenderName, r.Content,
			r.Kind, r.Direction, r.Status, r.Timestamp, strconv.FormatBool(r.IsEdited),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return buf.Bytes(), nil
}

// MessagesToText renders messages as a human-readable transcript, one block
// per message.
func MessagesToText(messages []database.Message) []byte {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		sender := m.SenderName
		if sender == "" && m.SenderID.Valid {
			sender = m.SenderID.String
		}
		if sender == "" {
			sender = "unknown"
		}
		fmt.Fprintf(&b, "[%s] %s (%s, %s)\n", m.Timestamp.UTC().Format(time.RFC3339), sender, m.Kind, m.Direction)
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return []byte(b.String())
}
