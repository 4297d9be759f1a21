// Package analytics records engagement events: one durable row per event in
// PostgreSQL plus cheap Redis counters that back the summary endpoint.
package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/supportbot/internal/engine"
	"github.com/ignite/supportbot/internal/pkg/logger"
)

const counterPrefix = "supportbot:analytics:"

// Well-known event types.
const (
	EventBotResponse   = "bot_response"
	EventEscalation    = "escalation"
	EventFallback      = "missing_info"
	EventFlowAction    = "flow_action"
	EventProactive     = "proactive_engagement"
	EventTopicDetected = "topic_detected"
)

// Tracker records analytics events. Both backends are optional: with a nil
// db events are counter-only, with a nil redis client they are row-only.
type Tracker struct {
	db    *sql.DB
	redis *redis.Client
}

// New creates a tracker. Either backend may be nil.
func New(db *sql.DB, redisClient *redis.Client) *Tracker {
	return &Tracker{db: db, redis: redisClient}
}

// TrackEvent records one event. Failures are logged, never propagated:
// analytics must not break the message path.
func (t *Tracker) TrackEvent(ctx context.Context, conversationID, eventType string, data map[string]interface{}) {
	if t == nil {
		return
	}
	if t.redis != nil {
		if err := t.redis.Incr(ctx, counterPrefix+eventType).Err(); err != nil {
			logger.Warn("analytics counter failed", "event_type", eventType, "error", err)
		}
	}
	if t.db != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			logger.Warn("analytics payload encode failed", "event_type", eventType, "error", err)
			return
		}
		_, err = t.db.ExecContext(ctx, `
			INSERT INTO analytics_events (id, conversation_id, event_type, data)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), conversationID, eventType, payload)
		if err != nil {
			logger.Warn("analytics event insert failed", "event_type", eventType, "error", err)
		}
	}
}

// TrackResponse records the engine's response classification for a message.
func (t *Tracker) TrackResponse(ctx context.Context, conversationID string, resp *engine.Response) {
	t.TrackEvent(ctx, conversationID, EventBotResponse, map[string]interface{}{
		"source":     resp.Source,
		"intent":     resp.Intent,
		"confidence": resp.Confidence,
		"escalated":  resp.ShouldEscalate,
	})
	if resp.ShouldEscalate {
		t.TrackEvent(ctx, conversationID, EventEscalation, map[string]interface{}{
			"intent": resp.Intent,
		})
	}
	if resp.Source == engine.SourceFallback {
		t.TrackEvent(ctx, conversationID, EventFallback, map[string]interface{}{
			"intent": resp.Intent,
		})
	}
}

// Summary returns the Redis counter values for the known event types.
func (t *Tracker) Summary(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	if t == nil || t.redis == nil {
		return out, nil
	}
	types := []string{
		EventBotResponse, EventEscalation, EventFallback,
		EventFlowAction, EventProactive, EventTopicDetected,
	}
	for _, eventType := range types {
		val, err := t.redis.Get(ctx, counterPrefix+eventType).Int64()
		if err == redis.Nil {
			out[eventType] = 0
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read counter %s: %w", eventType, err)
		}
		out[eventType] = val
	}
	return out, nil
}

// FlowEffects adapts the tracker to the engine's side-effect port: every
// declared flow action becomes an analytics event. Real ticketing or
// notification collaborators can replace this without touching the engine.
type FlowEffects struct {
	tracker *Tracker
}

// NewFlowEffects wraps a tracker as an engine.SideEffects implementation.
func NewFlowEffects(tracker *Tracker) *FlowEffects {
	return &FlowEffects{tracker: tracker}
}

// Apply records the action. It never fails; recording problems are logged
// inside TrackEvent.
func (f *FlowEffects) Apply(ctx context.Context, conversationID, flowName string, action engine.FlowAction) error {
	f.tracker.TrackEvent(ctx, conversationID, EventFlowAction, map[string]interface{}{
		"flow":   flowName,
		"action": string(action),
		"at":     time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}
