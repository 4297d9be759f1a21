// Package api exposes the conversation engine over HTTP: message exchange,
// session inspection, transcript archival, and operational stats.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/supportbot/internal/analytics"
	"github.com/ignite/supportbot/internal/archive"
	"github.com/ignite/supportbot/internal/engine"
	"github.com/ignite/supportbot/internal/pkg/logger"
	"github.com/ignite/supportbot/internal/repository/postgres"
)

// Handlers contains all HTTP handlers and their dependencies. The repo,
// tracker, and archiver are optional: a nil collaborator disables that
// surface without affecting the message path.
type Handlers struct {
	engine   *engine.Engine
	repo     *postgres.MessageRepo
	tracker  *analytics.Tracker
	archiver *archive.Archiver
}

// NewHandlers creates the handler set.
func NewHandlers(eng *engine.Engine, repo *postgres.MessageRepo, tracker *analytics.Tracker, archiver *archive.Archiver) *Handlers {
	return &Handlers{
		engine:   eng,
		repo:     repo,
		tracker:  tracker,
		archiver: archiver,
	}
}

// messageRequest is the inbound message payload.
type messageRequest struct {
	Content       string `json:"content"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

// messageResponse is the reply payload for a posted message.
type messageResponse struct {
	ConversationID string           `json:"conversation_id"`
	Response       *engine.Response `json:"response"`
	Timestamp      time.Time        `json:"timestamp"`
}

// HealthCheck returns service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "supportbot",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// PostMessage runs one customer message through the engine and returns the
// bot response. Messages are persisted when a repository is configured.
func (h *Handlers) PostMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	ctx := r.Context()
	convCtx := &engine.Context{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
	}

	resp, err := h.engine.Respond(ctx, conversationID, req.Content, convCtx)
	if err != nil {
		if errors.Is(err, engine.ErrEmptyMessage) || errors.Is(err, engine.ErrEmptyConversationID) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("respond failed", "conversation_id", conversationID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to generate response")
		return
	}

	if h.repo != nil {
		if err := h.repo.EnsureConversation(ctx, conversationID, req.CustomerName, req.CustomerEmail); err != nil {
			logger.Warn("conversation upsert failed", "conversation_id", conversationID, "error", err)
		}
		h.persistExchange(r, conversationID, req.Content, resp)
	}
	if h.tracker != nil {
		h.tracker.TrackResponse(ctx, conversationID, resp)
	}

	respondJSON(w, http.StatusOK, messageResponse{
		ConversationID: conversationID,
		Response:       resp,
		Timestamp:      time.Now().UTC(),
	})
}

// persistExchange stores the customer message and the bot reply. Storage
// failures are logged; the customer already has their response.
func (h *Handlers) persistExchange(r *http.Request, conversationID, content string, resp *engine.Response) {
	ctx := r.Context()
	inbound := &postgres.Message{
		ConversationID: conversationID,
		SenderType:     postgres.SenderCustomer,
		Content:        content,
	}
	if err := h.repo.CreateMessage(ctx, inbound); err != nil {
		logger.Warn("inbound message persist failed", "conversation_id", conversationID, "error", err)
	}

	outbound := &postgres.Message{
		ConversationID: conversationID,
		SenderType:     postgres.SenderBot,
		Content:        resp.Text,
		Metadata: map[string]interface{}{
			"source":     resp.Source,
			"intent":     resp.Intent,
			"confidence": resp.Confidence,
			"escalated":  resp.ShouldEscalate,
		},
	}
	if err := h.repo.CreateMessage(ctx, outbound); err != nil {
		logger.Warn("bot message persist failed", "conversation_id", conversationID, "error", err)
	}
}

// ListMessages returns the stored transcript for a conversation.
func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusNotImplemented, "message persistence is not configured")
		return
	}
	conversationID := chi.URLParam(r, "conversationID")

	messages, err := h.repo.ListMessages(r.Context(), conversationID, 0)
	if err != nil {
		logger.Error("list messages failed", "conversation_id", conversationID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": conversationID,
		"messages":        messages,
		"count":           len(messages),
	})
}

// GetSession returns the engine's live session state for a conversation.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	sess, err := h.engine.Session(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, engine.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		logger.Error("session lookup failed", "conversation_id", conversationID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// DeleteSession clears the engine's per-conversation state.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	if err := h.engine.ClearSession(r.Context(), conversationID); err != nil && !errors.Is(err, engine.ErrSessionNotFound) {
		logger.Error("session delete failed", "conversation_id", conversationID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"conversation_id": conversationID,
		"status":          "cleared",
	})
}

// ArchiveConversation exports the conversation transcript to S3.
func (h *Handlers) ArchiveConversation(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		respondError(w, http.StatusNotImplemented, "archival is not configured")
		return
	}
	if h.repo == nil {
		respondError(w, http.StatusNotImplemented, "message persistence is not configured")
		return
	}
	conversationID := chi.URLParam(r, "conversationID")
	ctx := r.Context()

	messages, err := h.repo.ListMessages(ctx, conversationID, 0)
	if err != nil {
		logger.Error("archive: list messages failed", "conversation_id", conversationID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}
	if len(messages) == 0 {
		respondError(w, http.StatusNotFound, "no messages for conversation")
		return
	}

	transcript := &archive.Transcript{
		ConversationID: conversationID,
		Messages:       messages,
	}
	if conv, err := h.repo.GetConversation(ctx, conversationID); err == nil {
		transcript.Customer = conv.CustomerName
	}
	if sess, err := h.engine.Session(ctx, conversationID); err == nil {
		transcript.Session = sess
	}

	key, err := h.archiver.Export(ctx, transcript)
	if err != nil {
		logger.Error("archive export failed", "conversation_id", conversationID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to archive conversation")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": conversationID,
		"key":             key,
		"message_count":   len(messages),
	})
}

// AnalyticsSummary returns the event counter snapshot.
func (h *Handlers) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	if h.tracker == nil {
		respondError(w, http.StatusNotImplemented, "analytics is not configured")
		return
	}
	summary, err := h.tracker.Summary(r.Context())
	if err != nil {
		logger.Error("analytics summary failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load analytics")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"counters":  summary,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// EngineStats returns the engine's internal counters.
func (h *Handlers) EngineStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Stats())
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
