// Package postgres persists conversations and messages. The response engine
// itself is persistence-free; this repository is the durable collaborator the
// API layer writes inbound and bot messages through.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a conversation or message doesn't exist.
var ErrNotFound = errors.New("not found")

// Sender types for stored messages.
const (
	SenderCustomer = "customer"
	SenderBot      = "bot"
	SenderAgent    = "agent"
)

// Message is a stored chat message.
type Message struct {
	ID             uuid.UUID              `json:"id"`
	ConversationID string                 `json:"conversation_id"`
	SenderType     string                 `json:"sender_type"`
	Content        string                 `json:"content"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// Conversation is a stored conversation header.
type Conversation struct {
	ID            string    `json:"id"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MessageRepo implements message persistence against PostgreSQL.
type MessageRepo struct{ db *sql.DB }

// NewMessageRepo creates a Postgres-backed message repository.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// EnsureConversation upserts the conversation header, bumping updated_at and
// filling in customer fields when they arrive later in the conversation.
func (r *MessageRepo) EnsureConversation(ctx context.Context, id, customerName, customerEmail string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversations (id, customer_name, customer_email, status)
		VALUES ($1, $2, $3, 'open')
		ON CONFLICT (id) DO UPDATE SET
			customer_name = COALESCE(NULLIF(EXCLUDED.customer_name, ''), conversations.customer_name),
			customer_email = COALESCE(NULLIF(EXCLUDED.customer_email, ''), conversations.customer_email),
			updated_at = NOW()
	`, id, customerName, customerEmail)
	if err != nil {
		return fmt.Errorf("ensure conversation: %w", err)
	}
	return nil
}

// GetConversation returns a conversation header.
func (r *MessageRepo) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	c := &Conversation{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(customer_name,''), COALESCE(customer_email,''), status, created_at, updated_at
		FROM conversations WHERE id = $1
	`, id).Scan(&c.ID, &c.CustomerName, &c.CustomerEmail, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

// CreateMessage stores one message. A nil ID is assigned.
func (r *MessageRepo) CreateMessage(ctx context.Context, m *Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	metadata, err := json.Marshal(m.Metadata)
	if err != nil {
		return fmt.Errorf("encode message metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_type, content, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.ConversationID, m.SenderType, m.Content, metadata)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListMessages returns a conversation's messages oldest-first.
func (r *MessageRepo) ListMessages(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_type, content, metadata, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var metadata []byte
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderType, &m.Content, &metadata, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if len(metadata) > 0 {
			json.Unmarshal(metadata, &m.Metadata)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
