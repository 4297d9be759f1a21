package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSessionPrefix = "supportbot:session:"

// RedisStore is a Redis-backed SessionStore. Sessions are JSON values with a
// native key TTL, so eviction is Redis's job and state survives restarts.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(conversationID string) string {
	return redisSessionPrefix + conversationID
}

func (r *RedisStore) Get(ctx context.Context, conversationID string) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(conversationID)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", conversationID, err)
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ConversationID, err)
	}
	if err := r.client.Set(ctx, r.key(session.ConversationID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis put session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, conversationID string) error {
	if err := r.client.Del(ctx, r.key(conversationID)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// List scans all session keys and fetches each value. Fine at the session
// counts a single tenant produces; revisit with an index set if that changes.
func (r *RedisStore) List(ctx context.Context) ([]*Session, error) {
	var sessions []*Session
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, redisSessionPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan sessions: %w", err)
		}
		for _, key := range keys {
			data, err := r.client.Get(ctx, key).Bytes()
			if err == redis.Nil {
				continue // expired between scan and get
			}
			if err != nil {
				return nil, fmt.Errorf("redis get %s: %w", key, err)
			}
			var s Session
			if err := json.Unmarshal(data, &s); err != nil {
				continue
			}
			sessions = append(sessions, &s)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return sessions, nil
}
