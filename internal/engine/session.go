package engine

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned by stores when no session exists for the id.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore is the injected conversation-state backend. The engine never
// holds session state in package-level variables; callers choose the store
// (in-memory for a single node, Redis when state must survive restarts).
type SessionStore interface {
	// Get returns the session for the conversation, or ErrSessionNotFound.
	Get(ctx context.Context, conversationID string) (*Session, error)
	// Put inserts or replaces the session.
	Put(ctx context.Context, session *Session) error
	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, conversationID string) error
	// List returns all live sessions (used by the proactive sweeper).
	List(ctx context.Context) ([]*Session, error)
}

// MemoryStore is a mutex-guarded in-memory SessionStore with TTL eviction.
// Sessions idle past the TTL are dropped lazily on access and listing.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	nowFunc  func() time.Time
}

// NewMemoryStore creates an in-memory store. ttl ≤ 0 disables eviction.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		nowFunc:  time.Now,
	}
}

func (m *MemoryStore) expired(s *Session) bool {
	return m.ttl > 0 && m.nowFunc().Sub(s.LastActivity) > m.ttl
}

// Get returns a copy of the stored session so callers can mutate freely.
func (m *MemoryStore) Get(_ context.Context, conversationID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[conversationID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.expired(s) {
		m.mu.Lock()
		delete(m.sessions, conversationID)
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *MemoryStore) Put(_ context.Context, session *Session) error {
	copied := *session
	m.mu.Lock()
	m.sessions[session.ConversationID] = &copied
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, conversationID string) error {
	m.mu.Lock()
	delete(m.sessions, conversationID)
	m.mu.Unlock()
	return nil
}

// List returns copies of all live sessions, evicting expired ones.
func (m *MemoryStore) List(_ context.Context) ([]*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
