package analytics

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/supportbot/internal/engine"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

// =============================================================================
// TRACKER TESTS
// =============================================================================

func TestTrackEvent_Counters(t *testing.T) {
	ctx := context.Background()
	tracker := New(nil, newTestRedis(t))

	tracker.TrackEvent(ctx, "conv-1", EventBotResponse, nil)
	tracker.TrackEvent(ctx, "conv-1", EventBotResponse, nil)
	tracker.TrackEvent(ctx, "conv-2", EventEscalation, nil)

	summary, err := tracker.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary[EventBotResponse] != 2 {
		t.Errorf("bot_response = %d, want 2", summary[EventBotResponse])
	}
	if summary[EventEscalation] != 1 {
		t.Errorf("escalation = %d, want 1", summary[EventEscalation])
	}
	if summary[EventFallback] != 0 {
		t.Errorf("missing_info = %d, want 0", summary[EventFallback])
	}
}

func TestTrackEvent_DatabaseRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO analytics_events").
		WithArgs(sqlmock.AnyArg(), "conv-1", EventFlowAction, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tracker := New(db, nil)
	tracker.TrackEvent(context.Background(), "conv-1", EventFlowAction, map[string]interface{}{"flow": "greeting"})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestTrackResponse(t *testing.T) {
	ctx := context.Background()
	tracker := New(nil, newTestRedis(t))

	tracker.TrackResponse(ctx, "conv-1", &engine.Response{
		Source:         engine.SourceFlow,
		Intent:         engine.IntentEscalation,
		ShouldEscalate: true,
	})
	tracker.TrackResponse(ctx, "conv-2", &engine.Response{
		Source: engine.SourceFallback,
		Intent: engine.IntentGeneral,
	})

	summary, err := tracker.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary[EventBotResponse] != 2 {
		t.Errorf("bot_response = %d, want 2", summary[EventBotResponse])
	}
	if summary[EventEscalation] != 1 {
		t.Errorf("escalation = %d, want 1", summary[EventEscalation])
	}
	if summary[EventFallback] != 1 {
		t.Errorf("missing_info = %d, want 1", summary[EventFallback])
	}
}

// A nil tracker and nil backends are all safe no-ops.
func TestTracker_NilSafety(t *testing.T) {
	ctx := context.Background()

	var nilTracker *Tracker
	nilTracker.TrackEvent(ctx, "conv-1", EventBotResponse, nil)

	empty := New(nil, nil)
	empty.TrackEvent(ctx, "conv-1", EventBotResponse, nil)

	summary, err := empty.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(summary) != 0 {
		t.Errorf("summary = %v, want empty", summary)
	}
}

// =============================================================================
// FLOW EFFECTS TESTS
// =============================================================================

func TestFlowEffects_Apply(t *testing.T) {
	ctx := context.Background()
	tracker := New(nil, newTestRedis(t))
	effects := NewFlowEffects(tracker)

	if err := effects.Apply(ctx, "conv-1", "greeting", engine.ActionTagConversation); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	summary, err := tracker.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary[EventFlowAction] != 1 {
		t.Errorf("flow_action = %d, want 1", summary[EventFlowAction])
	}
}
