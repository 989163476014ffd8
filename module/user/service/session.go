package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	redisc "Connectify/service/storage/redis"

	"github.com/redis/go-redis/v9"
)

// SessionStore records live sessions keyed by (user, token hash). A
// token that verifies cryptographically but has no session record is
// rejected, which is what makes logout and forced logout effective
// before the JWT expires.
type SessionStore interface {
	Put(ctx context.Context, userID, tokenHash string, ttl time.Duration) error
	Exists(ctx context.Context, userID, tokenHash string) (bool, error)
	Delete(ctx context.Context, userID, tokenHash string) error
}

// RedisSessionStore keeps one key per session with the token TTL.
type RedisSessionStore struct{}

func NewRedisSessionStore() *RedisSessionStore { return &RedisSessionStore{} }

func sessionKey(userID, tokenHash string) string {
	return fmt.Sprintf("sess:%s:%s", userID, tokenHash)
}

func (s *RedisSessionStore) Put(ctx context.Context, userID, tokenHash string, ttl time.Duration) error {
	return redisc.GetRedis().Set(ctx, sessionKey(userID, tokenHash), "1", ttl).Err()
}

func (s *RedisSessionStore) Exists(ctx context.Context, userID, tokenHash string) (bool, error) {
	_, err := redisc.GetRedis().Get(ctx, sessionKey(userID, tokenHash)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID, tokenHash string) error {
	return redisc.GetRedis().Del(ctx, sessionKey(userID, tokenHash)).Err()
}

// MemSessionStore backs tests; expiry is checked lazily on read.
type MemSessionStore struct {
	mu   sync.Mutex
	keys map[string]time.Time
}

func NewMemSessionStore() *MemSessionStore {
	return &MemSessionStore{keys: make(map[string]time.Time)}
}

func (s *MemSessionStore) Put(ctx context.Context, userID, tokenHash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[sessionKey(userID, tokenHash)] = time.Now().Add(ttl)
	return nil
}

func (s *MemSessionStore) Exists(ctx context.Context, userID, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.keys[sessionKey(userID, tokenHash)]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(s.keys, sessionKey(userID, tokenHash))
		return false, nil
	}
	return true, nil
}

func (s *MemSessionStore) Delete(ctx context.Context, userID, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, sessionKey(userID, tokenHash))
	return nil
}
