package salesapi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenSource holds the bearer token for the vendas API. It replaces the
// original ambient token storage with an injectable dependency so clients can
// be faked in tests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Store(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryTokenStore keeps the token in process memory.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore constructs an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Token returns the stored token, empty when none is held.
func (s *MemoryTokenStore) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// Store replaces the stored token.
func (s *MemoryTokenStore) Store(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
	return nil
}

// Clear drops the stored token.
func (s *MemoryTokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

const redisTokenKey = "vendascope:auth_token"

// RedisTokenStore shares one token across instances via Redis.
type RedisTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTokenStore constructs a Redis-backed token store. A zero ttl keeps
// tokens until explicitly cleared.
func NewRedisTokenStore(client *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{client: client, ttl: ttl}
}

// Token loads the shared token; a missing key yields an empty token, not an
// error.
func (s *RedisTokenStore) Token(ctx context.Context) (string, error) {
	if s == nil || s.client == nil {
		return "", nil
	}
	token, err := s.client.Get(ctx, redisTokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// Store persists the shared token.
func (s *RedisTokenStore) Store(ctx context.Context, token string) error {
	if s == nil || s.client == nil {
		return errors.New("tokenstore: redis client not configured")
	}
	return s.client.Set(ctx, redisTokenKey, strings.TrimSpace(token), s.ttl).Err()
}

// Clear removes the shared token.
func (s *RedisTokenStore) Clear(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Del(ctx, redisTokenKey).Err()
}
