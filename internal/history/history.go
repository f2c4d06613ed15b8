// Package history is the message persistence façade. It always writes to the
// in-memory caches and additionally to the remote store when one is
// configured; remote write failures are logged and never surface to
// handlers, and reads degrade to the cache when the store misbehaves.
package history

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/ArDangerUS/LegalFlowService/internal/cache"
	"github.com/ArDangerUS/LegalFlowService/internal/database"
	"github.com/ArDangerUS/LegalFlowService/internal/resilience"
)

// Service persists messages and conversations in dual mode: remote store
// plus cache, or cache only when store is nil.
type Service struct {
	store   database.Store
	breaker *resilience.Breaker
	retry   resilience.RetryConfig

	messages      *cache.Cache[database.Message]
	conversations *cache.Cache[database.Conversation]

	logger *slog.Logger
}

// NewService creates the façade. A nil store selects cache-only mode.
func NewService(
	store database.Store,
	messages *cache.Cache[database.Message],
	conversations *cache.Cache[database.Conversation],
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "history")

	var breaker *resilience.Breaker
	if store != nil {
		breaker = resilience.NewBreaker(resilience.BreakerConfig{Name: "message-store"}, logger)
	} else {
		logger.Warn("No remote store configured, running in cache-only mode")
	}

	return &Service{
		store:         store,
		breaker:       breaker,
		retry:         resilience.DefaultRetryConfig(),
		messages:      messages,
		conversations: conversations,
		logger:        logger,
	}
}

// RemoteAvailable reports whether a remote store is configured.
func (s *Service) RemoteAvailable() bool {
	return s.store != nil
}

// SaveMessage records the message in the cache and, when a store exists,
// inserts it remotely through the circuit breaker. A remote failure is
// logged; the caller never sees it.
func (s *Service) SaveMessage(ctx context.Context, message *database.Message) {
	if message == nil {
		return
	}
	s.messages.Set(message.ID, *message)

	if s.store == nil {
		return
	}
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.store.InsertMessage(ctx, message)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Remote message save failed, record kept in cache",
			"message_id", message.ID,
			"conversation_id", message.ConversationID,
			"error", err)
	}
}

// SaveConversation upserts the conversation remotely and refreshes the cache
// regardless of the remote outcome.
func (s *Service) SaveConversation(ctx context.Context, conversation *database.Conversation) {
	if conversation == nil {
		return
	}
	s.conversations.Set(conversation.ID, *conversation)

	if s.store == nil {
		return
	}
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.store.UpsertConversation(ctx, conversation)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Remote conversation save failed, record kept in cache",
			"conversation_id", conversation.ID,
			"error", err)
	}
}

// GetMessages returns up to limit messages, newest first, optionally
// filtered by conversation. Read errors degrade to the cache snapshot and
// never propagate.
func (s *Service) GetMessages(ctx context.Context, conversationID string, limit int) []database.Message {
	if s.store != nil {
		var remote []database.Message
		err := resilience.WithRetry(ctx, func(ctx context.Context) error {
			var opErr error
			remote, opErr = s.store.SelectMessages(ctx, conversationID, limit)
			return opErr
		}, s.retry)
		if err == nil {
			return remote
		}
		s.logger.WarnContext(ctx, "Remote message read failed, falling back to cache",
			"conversation_id", conversationID, "error", err)
	}

	messages := s.messages.Values()
	if conversationID != "" {
		filtered := messages[:0]
		for _, m := range messages {
			if m.ConversationID == conversationID {
				filtered = append(filtered, m)
			}
		}
		messages = filtered
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.After(messages[j].Timestamp)
	})
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	return messages
}

// GetConversations returns all known conversations, most recently updated
// first, with the same dual-mode fallback as GetMessages.
func (s *Service) GetConversations(ctx context.Context) []database.Conversation {
	if s.store != nil {
		var remote []database.Conversation
		err := resilience.WithRetry(ctx, func(ctx context.Context) error {
			var opErr error
			remote, opErr = s.store.SelectConversations(ctx)
			return opErr
		}, s.retry)
		if err == nil {
			return remote
		}
		s.logger.WarnContext(ctx, "Remote conversation read failed, falling back to cache", "error", err)
	}

	conversations := s.conversations.Values()
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
	return conversations
}

// ClearHistory wipes both caches and, when a store exists, the remote
// tables. The caches are cleared even if the remote wipe fails; the remote
// error is returned so the caller can report it.
func (s *Service) ClearHistory(ctx context.Context) error {
	s.messages.Clear()
	s.conversations.Clear()

	if s.store == nil {
		return nil
	}
	if err := s.store.DeleteAll(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Remote history wipe failed", "error", err)
		return err
	}
	return nil
}

// SweepCaches drops expired entries from both caches. Called from the
// scheduled maintenance task and on shutdown.
func (s *Service) SweepCaches() (messages, conversations int) {
	return s.messages.Sweep(), s.conversations.Sweep()
}
