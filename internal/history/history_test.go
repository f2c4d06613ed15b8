package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ArDangerUS/LegalFlowService/internal/cache"
	"github.com/ArDangerUS/LegalFlowService/internal/database"
)

// fakeStore records calls and can be forced to fail.
type fakeStore struct {
	failWrites bool
	failReads  bool

	inserted      []database.Message
	upserted      []database.Conversation
	selectResult  []database.Message
	conversations []database.Conversation
	wiped         bool
}

var errBackend = errors.New("backend unavailable")

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) InsertMessage(_ context.Context, m *database.Message) error {
	if f.failWrites {
		return errBackend
	}
	f.inserted = append(f.inserted, *m)
	return nil
}

func (f *fakeStore) UpsertConversation(_ context.Context, c *database.Conversation) error {
	if f.failWrites {
		return errBackend
	}
	f.upserted = append(f.upserted, *c)
	return nil
}

func (f *fakeStore) SelectMessages(_ context.Context, _ string, _ int) ([]database.Message, error) {
	if f.failReads {
		return nil, errBackend
	}
	return f.selectResult, nil
}

func (f *fakeStore) SelectConversations(context.Context) ([]database.Conversation, error) {
	if f.failReads {
		return nil, errBackend
	}
	return f.conversations, nil
}

func (f *fakeStore) DeleteAll(context.Context) error {
	if f.failWrites {
		return errBackend
	}
	f.wiped = true
	return nil
}

func (f *fakeStore) RunMaintenance(context.Context) error { return nil }

func newTestService(store database.Store) *Service {
	messages := cache.New[database.Message](100, time.Hour)
	conversations := cache.New[database.Conversation](100, time.Hour)
	svc := NewService(store, messages, conversations, nil)
	// Keep read-retry fast and deterministic in tests.
	svc.retry.MaxAttempts = 1
	return svc
}

func msg(id, conversationID string, ts time.Time) *database.Message {
	return &database.Message{
		ID:             id,
		ConversationID: conversationID,
		Content:        "content " + id,
		Kind:           database.KindText,
		Direction:      database.DirectionIncoming,
		Status:         database.StatusDelivered,
		Timestamp:      ts,
	}
}

func TestSaveMessageDualMode(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := newTestService(store)

	svc.SaveMessage(context.Background(), msg("m1", "c1", time.Now()))

	if len(store.inserted) != 1 || store.inserted[0].ID != "m1" {
		t.Errorf("remote store received %v, want one insert of m1", store.inserted)
	}
	if got := svc.messages.Len(); got != 1 {
		t.Errorf("cache holds %d messages, want 1", got)
	}
}

func TestSaveMessageRemoteFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failWrites: true}
	svc := newTestService(store)

	// Must not panic or surface an error; the cache copy survives.
	svc.SaveMessage(context.Background(), msg("m1", "c1", time.Now()))

	if got := svc.messages.Len(); got != 1 {
		t.Errorf("cache holds %d messages after remote failure, want 1", got)
	}
}

func TestGetMessagesRemoteFirst(t *testing.T) {
	t.Parallel()

	store := &fakeStore{selectResult: []database.Message{{ID: "remote"}}}
	svc := newTestService(store)

	got := svc.GetMessages(context.Background(), "c1", 10)
	if len(got) != 1 || got[0].ID != "remote" {
		t.Errorf("GetMessages() = %v, want the remote result", got)
	}
}

func TestGetMessagesFallsBackToCache(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failReads: true}
	svc := newTestService(store)

	base := time.Unix(1000, 0)
	svc.SaveMessage(context.Background(), msg("old", "c1", base))
	svc.SaveMessage(context.Background(), msg("new", "c1", base.Add(time.Minute)))
	svc.SaveMessage(context.Background(), msg("other", "c2", base.Add(2*time.Minute)))

	got := svc.GetMessages(context.Background(), "c1", 10)
	if len(got) != 2 {
		t.Fatalf("GetMessages() returned %d messages, want 2", len(got))
	}
	if got[0].ID != "new" || got[1].ID != "old" {
		t.Errorf("messages not newest-first: [%s, %s]", got[0].ID, got[1].ID)
	}
}

func TestGetMessagesCacheOnlyLimit(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)

	base := time.Unix(1000, 0)
	for i, id := range []string{"a", "b", "c"} {
		svc.SaveMessage(context.Background(), msg(id, "c1", base.Add(time.Duration(i)*time.Minute)))
	}

	got := svc.GetMessages(context.Background(), "c1", 2)
	if len(got) != 2 {
		t.Fatalf("GetMessages() returned %d messages, want 2", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "b" {
		t.Errorf("limit must keep the newest messages, got [%s, %s]", got[0].ID, got[1].ID)
	}
}

func TestGetConversationsOrdering(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	base := time.Unix(1000, 0)

	svc.SaveConversation(context.Background(), &database.Conversation{ID: "stale", UpdatedAt: base})
	svc.SaveConversation(context.Background(), &database.Conversation{ID: "active", UpdatedAt: base.Add(time.Hour)})

	got := svc.GetConversations(context.Background())
	if len(got) != 2 {
		t.Fatalf("GetConversations() returned %d, want 2", len(got))
	}
	if got[0].ID != "active" {
		t.Errorf("conversations not most-recently-updated first: %s", got[0].ID)
	}
}

func TestClearHistory(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := newTestService(store)

	svc.SaveMessage(context.Background(), msg("m1", "c1", time.Now()))
	svc.SaveConversation(context.Background(), &database.Conversation{ID: "c1"})

	if err := svc.ClearHistory(context.Background()); err != nil {
		t.Fatalf("ClearHistory() = %v, want nil", err)
	}
	if !store.wiped {
		t.Error("remote store should have been wiped")
	}
	if svc.messages.Len() != 0 || svc.conversations.Len() != 0 {
		t.Error("caches should be empty after ClearHistory")
	}
}

func TestClearHistoryRemoteFailureStillClearsCaches(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failWrites: true}
	svc := newTestService(store)

	svc.SaveMessage(context.Background(), msg("m1", "c1", time.Now()))

	if err := svc.ClearHistory(context.Background()); !errors.Is(err, errBackend) {
		t.Errorf("ClearHistory() = %v, want backend error", err)
	}
	if svc.messages.Len() != 0 {
		t.Error("caches must be cleared even when the remote wipe fails")
	}
}
