package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the persistence operations the history service relies on.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// InsertMessage inserts a new message record.
	InsertMessage(ctx context.Context, message *Message) error

	// UpsertConversation inserts the conversation on first contact and
	// refreshes name and updated_at afterwards.
	UpsertConversation(ctx context.Context, conversation *Conversation) error

	// SelectMessages retrieves the most recent 'limit' messages, newest
	// first. An empty conversationID selects across all conversations.
	SelectMessages(ctx context.Context, conversationID string, limit int) ([]Message, error)

	// SelectConversations retrieves all conversations, most recently
	// updated first.
	SelectConversations(ctx context.Context) ([]Conversation, error)

	// DeleteAll removes every message and conversation in one transaction.
	DeleteAll(ctx context.Context) error

	// RunMaintenance performs database maintenance tasks like VACUUM.
	RunMaintenance(ctx context.Context) error
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by a connected sqlx.DB.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertMessage inserts a new message record.
func (s *sqlxStore) InsertMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot save nil message")
	}
	if message.ID == "" {
		return fmt.Errorf("message must have an id")
	}
	if message.ConversationID == "" {
		return fmt.Errorf("message must have a conversation_id")
	}
	if message.Timestamp.IsZero() {
		return fmt.Errorf("message must have a non-zero timestamp")
	}

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving message",
			"conversation_id", message.ConversationID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	query := `
        INSERT INTO messages (
            id, conversation_id, sender_id, sender_name, content, kind,
            direction, status, timestamp, telegram_message_id, is_edited,
            edited_at, attachments, created_at
        ) VALUES (
            :id, :conversation_id, :sender_id, :sender_name, :content, :kind,
            :direction, :status, :timestamp, :telegram_message_id, :is_edited,
            :edited_at, :attachments, :created_at
        );
    `

	result, err := tx.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message",
			"conversation_id", message.ConversationID, "message_id", message.ID, "error", err)
		return fmt.Errorf("failed to save message %s: %w", message.ID, err)
	}

	if affected, affErr := result.RowsAffected(); affErr == nil && affected != 1 {
		s.logger.WarnContext(ctx, "Unexpected number of rows affected when saving message",
			"message_id", message.ID, "affected", affected)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"message_id", message.ID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Message saved successfully",
		"conversation_id", message.ConversationID, "message_id", message.ID)
	return nil
}

// UpsertConversation checks for an existing row and inserts or updates it
// inside one transaction. The single-writer SQLite connection serializes
// concurrent first-contact upserts.
func (s *sqlxStore) UpsertConversation(ctx context.Context, conversation *Conversation) error {
	if conversation == nil {
		return fmt.Errorf("cannot save nil conversation")
	}
	if conversation.ID == "" {
		return fmt.Errorf("conversation must have an id")
	}

	now := time.Now().UTC()
	conversation.UpdatedAt = now
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = now
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving conversation",
			"conversation_id", conversation.ID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		`SELECT 1 FROM conversations WHERE id = ? LIMIT 1`, conversation.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.ErrorContext(ctx, "Error checking if conversation exists",
			"conversation_id", conversation.ID, "error", err)
		return fmt.Errorf("failed to check conversation %s: %w", conversation.ID, err)
	}

	if exists {
		query := `
			UPDATE conversations SET
				name = :name,
				telegram_chat_id = :telegram_chat_id,
				updated_at = :updated_at
			WHERE id = :id
		`
		_, err = tx.NamedExecContext(ctx, query, conversation)
	} else {
		query := `
			INSERT INTO conversations (id, name, telegram_chat_id, created_at, updated_at)
			VALUES (:id, :name, :telegram_chat_id, :created_at, :updated_at)
		`
		_, err = tx.NamedExecContext(ctx, query, conversation)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving conversation",
			"conversation_id", conversation.ID, "error", err)
		return fmt.Errorf("failed to save conversation %s: %w", conversation.ID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"conversation_id", conversation.ID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	operation := "updated"
	if !exists {
		operation = "created"
	}
	s.logger.DebugContext(ctx, "Conversation saved successfully",
		"operation", operation, "conversation_id", conversation.ID)
	return nil
}

// SelectMessages retrieves the most recent 'limit' messages, newest first.
func (s *sqlxStore) SelectMessages(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
		s.logger.DebugContext(ctx, "Invalid limit provided, using default", "default_limit", limit)
	} else if limit > 500 {
		limit = 500
		s.logger.DebugContext(ctx, "Limit exceeded maximum value, capping", "capped_limit", limit)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var messages []Message
	var err error
	if conversationID != "" {
		query := `
            SELECT id, conversation_id, sender_id, sender_name, content, kind,
                   direction, status, timestamp, telegram_message_id, is_edited,
                   edited_at, attachments, created_at
            FROM messages
            WHERE conversation_id = ?
            ORDER BY timestamp DESC, id DESC
            LIMIT ?;
        `
		err = s.db.SelectContext(ctx, &messages, query, conversationID, limit)
	} else {
		query := `
            SELECT id, conversation_id, sender_id, sender_name, content, kind,
                   direction, status, timestamp, telegram_message_id, is_edited,
                   edited_at, attachments, created_at
            FROM messages
            ORDER BY timestamp DESC, id DESC
            LIMIT ?;
        `
		err = s.db.SelectContext(ctx, &messages, query, limit)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching messages",
			"conversation_id", conversationID, "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting messages",
			"conversation_id", conversationID, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched messages successfully",
		"conversation_id", conversationID, "count", len(messages))
	return messages, nil
}

// SelectConversations retrieves all conversations, most recently updated first.
func (s *sqlxStore) SelectConversations(ctx context.Context) ([]Conversation, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var conversations []Conversation
	query := `
        SELECT id, name, telegram_chat_id, created_at, updated_at
        FROM conversations
        ORDER BY updated_at DESC;
    `

	err := s.db.SelectContext(ctx, &conversations, query)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching conversations", "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting conversations", "error", err)
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched conversations successfully", "count", len(conversations))
	return conversations, nil
}

// DeleteAll removes every message and conversation in a single transaction so
// a partial wipe cannot leave orphaned records.
func (s *sqlxStore) DeleteAll(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for history wipe", "error", err)
		return fmt.Errorf("failed to begin transaction for history wipe: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	messagesResult, err := tx.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting messages during wipe", "error", err)
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	messagesCount, _ := messagesResult.RowsAffected()

	conversationsResult, err := tx.ExecContext(ctx, `DELETE FROM conversations`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting conversations during wipe", "error", err)
		return fmt.Errorf("failed to delete conversations: %w", err)
	}
	conversationsCount, _ := conversationsResult.RowsAffected()

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit history wipe transaction", "error", err)
		return fmt.Errorf("failed to commit history wipe transaction: %w", err)
	}
	tx = nil

	s.logger.InfoContext(ctx, "History wiped",
		"messages_deleted", messagesCount,
		"conversations_deleted", conversationsCount)
	return nil
}

// RunMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
