package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ignite/supportbot/internal/pkg/logger"
)

const proactiveMessage = "Hi! I noticed you've been away for a bit — I'm still here if you need anything. Is there something I can help you with?"

// ProactiveNudge is a re-engagement message produced for an idle conversation.
type ProactiveNudge struct {
	ConversationID string
	Response       *Response
}

// checkProactive returns a re-engagement response when the session has been
// idle past the configured window and has not been nudged before. The
// ProactiveEngaged flag is set at most once per session lifetime.
func (e *Engine) checkProactive(sess *Session) *Response {
	if sess.MessageCount == 0 || sess.ProactiveEngaged {
		return nil
	}
	if e.nowFunc().Sub(sess.LastActivity) <= e.cfg.ProactiveIdle() {
		return nil
	}
	sess.ProactiveEngaged = true
	return &Response{
		Text:       proactiveMessage,
		Confidence: e.cfg.ProactiveConfidence,
		Source:     SourceProactive,
	}
}

// SweepIdleSessions scans every live session and produces a nudge for each
// one idle past the window. This is the push-side counterpart to the in-band
// check: conversations that never receive another inbound message still get
// re-engaged. Callers deliver the returned nudges (persist + display).
func (e *Engine) SweepIdleSessions(ctx context.Context) ([]ProactiveNudge, error) {
	sessions, err := e.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var nudges []ProactiveNudge
	for _, sess := range sessions {
		if nudge := e.sweepOne(ctx, sess.ConversationID); nudge != nil {
			nudges = append(nudges, *nudge)
		}
	}
	return nudges, nil
}

// sweepOne nudges a single conversation under its stripe lock. The listed
// snapshot may be stale by the time we get here (a message can land between
// List and now), so the session is re-read before mutating; the same lock
// Respond takes makes the read-modify-write atomic against inbound traffic.
func (e *Engine) sweepOne(ctx context.Context, conversationID string) *ProactiveNudge {
	lock := &e.locks[stripeFor(conversationID)]
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.sessions.Get(ctx, conversationID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			logger.Warn("proactive sweep: session load failed",
				"conversation_id", conversationID, "error", err)
		}
		return nil
	}

	resp := e.checkProactive(sess)
	if resp == nil {
		return nil
	}
	sess.AIResponses = append(sess.AIResponses, ResponseRecord{
		Confidence: resp.Confidence,
		Source:     resp.Source,
		Timestamp:  e.nowFunc(),
	})
	if err := e.sessions.Put(ctx, sess); err != nil {
		logger.Warn("proactive sweep: session update failed",
			"conversation_id", conversationID, "error", err)
		return nil
	}
	e.proactiveTotal.Add(1)
	return &ProactiveNudge{ConversationID: conversationID, Response: resp}
}
