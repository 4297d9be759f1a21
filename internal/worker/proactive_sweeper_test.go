package worker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/supportbot/internal/analytics"
	"github.com/ignite/supportbot/internal/config"
	"github.com/ignite/supportbot/internal/engine"
)

// =============================================================================
// PROACTIVE SWEEPER TESTS
// =============================================================================

func TestSweep_DeliversNudges(t *testing.T) {
	ctx := context.Background()

	store := engine.NewMemoryStore(0)
	eng, err := engine.New(config.DefaultEngineConfig(), store, nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	tracker := analytics.New(nil, client)

	// One conversation long idle, one fresh.
	store.Put(ctx, &engine.Session{
		ConversationID: "idle-conv",
		MessageCount:   1,
		LastActivity:   time.Now().Add(-time.Hour),
	})
	store.Put(ctx, &engine.Session{
		ConversationID: "fresh-conv",
		MessageCount:   1,
		LastActivity:   time.Now(),
	})

	sweeper := NewProactiveSweeper(eng, nil, tracker, time.Minute)
	sweeper.sweep(ctx)

	sess, err := store.Get(ctx, "idle-conv")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !sess.ProactiveEngaged {
		t.Error("idle session was not nudged")
	}

	fresh, err := store.Get(ctx, "fresh-conv")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fresh.ProactiveEngaged {
		t.Error("fresh session was nudged")
	}

	summary, err := tracker.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary[analytics.EventProactive] != 1 {
		t.Errorf("proactive_engagement = %d, want 1", summary[analytics.EventProactive])
	}

	// A second pass has nothing left to do.
	sweeper.sweep(ctx)
	summary, _ = tracker.Summary(ctx)
	if summary[analytics.EventProactive] != 1 {
		t.Errorf("proactive_engagement after second sweep = %d, want still 1", summary[analytics.EventProactive])
	}
}

func TestStart_StopsOnCancel(t *testing.T) {
	store := engine.NewMemoryStore(0)
	eng, err := engine.New(config.DefaultEngineConfig(), store, nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	sweeper := NewProactiveSweeper(eng, nil, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
