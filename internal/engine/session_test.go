package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

// =============================================================================
// MEMORY STORE TESTS
// =============================================================================

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	sess := &Session{ConversationID: "conv-1", MessageCount: 3}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "conv-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MessageCount != 3 {
		t.Errorf("MessageCount = %d, want 3", got.MessageCount)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore(0)

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

// Get and Put hand out copies; mutating a returned session must not leak
// into the store.
func TestMemoryStore_CopySemantics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	store.Put(ctx, &Session{ConversationID: "conv-1", MessageCount: 1})

	got, _ := store.Get(ctx, "conv-1")
	got.MessageCount = 99

	again, _ := store.Get(ctx, "conv-1")
	if again.MessageCount != 1 {
		t.Errorf("MessageCount = %d, caller mutation leaked into store", again.MessageCount)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	store.Put(ctx, &Session{ConversationID: "conv-1"})
	if err := store.Delete(ctx, "conv-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "conv-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound after delete", err)
	}

	// Deleting a missing session is not an error.
	if err := store.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestMemoryStore_TTLEviction(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10 * time.Minute)

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	store.nowFunc = func() time.Time { return now }

	store.Put(ctx, &Session{ConversationID: "conv-1", LastActivity: now})

	// Within the TTL the session is alive.
	if _, err := store.Get(ctx, "conv-1"); err != nil {
		t.Fatalf("Get within TTL: %v", err)
	}

	// Past the TTL it is lazily evicted.
	now = now.Add(11 * time.Minute)
	if _, err := store.Get(ctx, "conv-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound past TTL", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0 after eviction", store.Len())
	}
}

func TestMemoryStore_List(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10 * time.Minute)

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	store.nowFunc = func() time.Time { return now }

	store.Put(ctx, &Session{ConversationID: "live", LastActivity: now})
	store.Put(ctx, &Session{ConversationID: "stale", LastActivity: now.Add(-time.Hour)})

	sessions, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ConversationID != "live" {
		t.Errorf("List = %d sessions, want just the live one", len(sessions))
	}
}
