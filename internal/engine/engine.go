package engine

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ignite/supportbot/internal/config"
	"github.com/ignite/supportbot/internal/pkg/logger"
)

// Input validation errors. Everything past validation degrades to the
// fallback response instead of erroring.
var (
	ErrEmptyMessage        = errors.New("message is empty")
	ErrEmptyConversationID = errors.New("conversation id is empty")
)

const fallbackMessage = "I want to make sure I understand you correctly. Could you rephrase that, or let me know if you'd like to speak with a member of our team?"

const lockStripes = 64

// Engine orchestrates the response pipeline:
// analyze → flow check → proactive check → generate → enhance → update state.
// Per-conversation state access is serialized through striped locks so
// concurrent requests for the same conversation cannot lose updates.
type Engine struct {
	cfg       config.EngineConfig
	intents   *IntentClassifier
	sentiment *SentimentAnalyzer
	flows     []Flow
	sessions  SessionStore
	effects   SideEffects
	responder *Responder
	enhancer  *Enhancer

	nowFunc func() time.Time
	locks   [lockStripes]sync.Mutex

	responsesTotal atomic.Uint64
	flowMatches    atomic.Uint64
	proactiveTotal atomic.Uint64
	fallbackTotal  atomic.Uint64
}

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	ResponsesTotal     uint64 `json:"responses_total"`
	FlowMatches        uint64 `json:"flow_matches"`
	ProactiveNudges    uint64 `json:"proactive_nudges"`
	Fallbacks          uint64 `json:"fallbacks"`
	SentimentCacheSize int    `json:"sentiment_cache_size"`
}

// New creates an engine with the default flow table.
func New(cfg config.EngineConfig, store SessionStore, effects SideEffects) (*Engine, error) {
	return NewWithFlows(cfg, store, effects, DefaultFlows())
}

// NewWithFlows creates an engine with a caller-supplied flow table.
func NewWithFlows(cfg config.EngineConfig, store SessionStore, effects SideEffects, flows []Flow) (*Engine, error) {
	if store == nil {
		return nil, errors.New("engine: session store is required")
	}
	if effects == nil {
		effects = NopSideEffects{}
	}

	responder, err := NewResponder()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	return &Engine{
		cfg:       cfg,
		intents:   NewIntentClassifier(cfg),
		sentiment: NewSentimentAnalyzer(cfg.SentimentCacheSize),
		flows:     flows,
		sessions:  store,
		effects:   effects,
		responder: responder,
		enhancer:  NewEnhancer(cfg.EmpathyThreshold, cfg.MaxSuggestions),
		nowFunc:   time.Now,
	}, nil
}

// Respond runs the full pipeline for one inbound message and returns the
// response payload. It only errors on invalid input; internal failures
// degrade to the fallback response so the caller always has something to
// show the customer.
func (e *Engine) Respond(ctx context.Context, conversationID, message string, convCtx *Context) (*Response, error) {
	if conversationID == "" {
		return nil, ErrEmptyConversationID
	}
	if message == "" {
		return nil, ErrEmptyMessage
	}

	lock := &e.locks[stripeFor(conversationID)]
	lock.Lock()
	defer lock.Unlock()

	now := e.nowFunc()
	sess, err := e.sessions.Get(ctx, conversationID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			logger.Warn("session load failed, starting fresh",
				"conversation_id", conversationID, "error", err)
		}
		sess = &Session{
			ConversationID: conversationID,
			StartedAt:      now,
			LastActivity:   now,
		}
	}

	analysis := e.analyze(message, sess, convCtx)
	resp := e.respond(ctx, conversationID, message, analysis, sess, convCtx)

	if analysis.Intent.Label == IntentEscalation {
		resp.ShouldEscalate = true
		sess.EscalationAttempts++
	}

	e.updateSession(sess, analysis, resp, now)
	if err := e.sessions.Put(ctx, sess); err != nil {
		logger.Error("session update failed",
			"conversation_id", conversationID, "error", err)
	}

	e.responsesTotal.Add(1)
	return resp, nil
}

// respond runs flow/proactive/contextual selection behind a recover barrier:
// any panic or step error becomes the fallback response.
func (e *Engine) respond(ctx context.Context, conversationID, message string, a *Analysis, sess *Session, convCtx *Context) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("response pipeline panicked",
				"conversation_id", conversationID, "panic", fmt.Sprintf("%v", r))
			resp = e.fallback(a)
		}
	}()

	if flow := matchFlow(message, a, e.flows); flow != nil {
		e.flowMatches.Add(1)
		e.applyFlowActions(ctx, conversationID, flow)
		return &Response{
			Text:           flow.Response,
			Confidence:     e.cfg.FlowConfidence,
			Source:         SourceFlow,
			Intent:         a.Intent.Label,
			ShouldEscalate: flow.Escalate,
		}
	}

	if proactive := e.checkProactive(sess); proactive != nil {
		e.proactiveTotal.Add(1)
		return proactive
	}

	generated, err := e.responder.Generate(a, convCtx)
	if err != nil {
		logger.Error("response generation failed",
			"conversation_id", conversationID, "intent", a.Intent.Label, "error", err)
		return e.fallback(a)
	}
	return e.enhancer.Enhance(generated, a, convCtx)
}

// fallback is the single degradation path: a generic reply the caller can
// always show, escalating when the message looked like it needed a human.
func (e *Engine) fallback(a *Analysis) *Response {
	e.fallbackTotal.Add(1)
	resp := &Response{
		Text:       fallbackMessage,
		Confidence: e.cfg.FallbackConfidence,
		Source:     SourceFallback,
	}
	if a != nil {
		resp.Intent = a.Intent.Label
		if a.Intent.Label == IntentEscalation || a.Sentiment.Label == SentimentNegative {
			resp.ShouldEscalate = true
		}
	}
	return resp
}

// analyze builds the per-message analysis record, carrying over prior
// session fields when present.
func (e *Engine) analyze(message string, sess *Session, convCtx *Context) *Analysis {
	a := &Analysis{
		Intent:     e.intents.Classify(message),
		Sentiment:  e.sentiment.Analyze(message),
		Entities:   ExtractEntities(message),
		Urgency:    AnalyzeUrgency(message),
		Topics:     ExtractTopics(message),
		Language:   DetectLanguage(message),
		Complexity: AnalyzeComplexity(message),
	}

	a.ConversationLength = sess.MessageCount
	a.PreviousIntent = sess.LastIntent
	a.EscalationAttempts = sess.EscalationAttempts
	a.Stage = conversationStage(sess.MessageCount + 1)
	if convCtx != nil && convCtx.Stage != "" {
		a.Stage = convCtx.Stage
	}
	return a
}

func (e *Engine) updateSession(sess *Session, a *Analysis, resp *Response, now time.Time) {
	sess.MessageCount++
	sess.LastActivity = now
	sess.Intents = append(sess.Intents, a.Intent.Label)
	sess.LastIntent = a.Intent.Label
	for _, t := range a.Topics {
		if !sess.hasTopic(t.Topic) {
			sess.Topics = append(sess.Topics, t.Topic)
		}
	}
	sess.AIResponses = append(sess.AIResponses, ResponseRecord{
		Confidence: resp.Confidence,
		Source:     resp.Source,
		Timestamp:  now,
	})
}

func (e *Engine) applyFlowActions(ctx context.Context, conversationID string, flow *Flow) {
	for _, action := range flow.Actions {
		if err := e.effects.Apply(ctx, conversationID, flow.Name, action); err != nil {
			logger.Warn("flow action failed",
				"conversation_id", conversationID, "flow", flow.Name,
				"action", string(action), "error", err)
		}
	}
}

// Session returns the live session for a conversation.
func (e *Engine) Session(ctx context.Context, conversationID string) (*Session, error) {
	return e.sessions.Get(ctx, conversationID)
}

// ClearSession drops the per-conversation state.
func (e *Engine) ClearSession(ctx context.Context, conversationID string) error {
	return e.sessions.Delete(ctx, conversationID)
}

// Stats returns a snapshot of engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		ResponsesTotal:     e.responsesTotal.Load(),
		FlowMatches:        e.flowMatches.Load(),
		ProactiveNudges:    e.proactiveTotal.Load(),
		Fallbacks:          e.fallbackTotal.Load(),
		SentimentCacheSize: e.sentiment.CacheLen(),
	}
}

func stripeFor(conversationID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(conversationID))
	return h.Sum32() % lockStripes
}
