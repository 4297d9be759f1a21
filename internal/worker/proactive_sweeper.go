// Package worker runs background loops alongside the API server.
package worker

import (
	"context"
	"time"

	"github.com/ignite/supportbot/internal/analytics"
	"github.com/ignite/supportbot/internal/engine"
	"github.com/ignite/supportbot/internal/pkg/logger"
	"github.com/ignite/supportbot/internal/repository/postgres"
)

// ProactiveSweeper periodically scans live sessions and delivers
// re-engagement nudges to conversations that have gone idle. The in-band
// check only fires when a customer sends another message; this loop reaches
// the ones who never do.
type ProactiveSweeper struct {
	engine   *engine.Engine
	repo     *postgres.MessageRepo
	tracker  *analytics.Tracker
	interval time.Duration
}

// NewProactiveSweeper creates a sweeper. The repo and tracker may be nil.
func NewProactiveSweeper(eng *engine.Engine, repo *postgres.MessageRepo, tracker *analytics.Tracker, interval time.Duration) *ProactiveSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ProactiveSweeper{
		engine:   eng,
		repo:     repo,
		tracker:  tracker,
		interval: interval,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *ProactiveSweeper) Start(ctx context.Context) {
	logger.Info("proactive sweeper started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("proactive sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one pass and delivers the resulting nudges.
func (s *ProactiveSweeper) sweep(ctx context.Context) {
	nudges, err := s.engine.SweepIdleSessions(ctx)
	if err != nil {
		logger.Error("proactive sweep failed", "error", err)
		return
	}
	if len(nudges) == 0 {
		return
	}

	for _, nudge := range nudges {
		s.deliver(ctx, nudge)
	}
	logger.Info("proactive sweep delivered nudges", "count", len(nudges))
}

func (s *ProactiveSweeper) deliver(ctx context.Context, nudge engine.ProactiveNudge) {
	if s.repo != nil {
		msg := &postgres.Message{
			ConversationID: nudge.ConversationID,
			SenderType:     postgres.SenderBot,
			Content:        nudge.Response.Text,
			Metadata: map[string]interface{}{
				"source":     nudge.Response.Source,
				"confidence": nudge.Response.Confidence,
			},
		}
		if err := s.repo.CreateMessage(ctx, msg); err != nil {
			logger.Warn("proactive nudge persist failed",
				"conversation_id", nudge.ConversationID, "error", err)
		}
	}
	if s.tracker != nil {
		s.tracker.TrackEvent(ctx, nudge.ConversationID, analytics.EventProactive, map[string]interface{}{
			"confidence": nudge.Response.Confidence,
		})
	}
}
