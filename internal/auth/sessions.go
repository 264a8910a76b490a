package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tiendaonline/backend/internal/redisx"
	"github.com/tiendaonline/backend/internal/users"
)

// SessionCache tracks issued tokens by their jti so logout can revoke a
// token before it expires.
type SessionCache interface {
	Put(ctx context.Context, jti string, actor users.Actor, ttl time.Duration) error
	Get(ctx context.Context, jti string) (users.Actor, bool, error)
	Delete(ctx context.Context, jti string) error
}

type redisSessions struct {
	client *redis.Client
}

func NewRedisSessions(client *redis.Client) SessionCache {
	return &redisSessions{client: client}
}

func (s *redisSessions) Put(ctx context.Context, jti string, actor users.Actor, ttl time.Duration) error {
	b, err := json.Marshal(actor)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, fmt.Sprintf(redisx.KeySession, jti), b, ttl).Err()
}

func (s *redisSessions) Get(ctx context.Context, jti string) (users.Actor, bool, error) {
	v, err := s.client.Get(ctx, fmt.Sprintf(redisx.KeySession, jti)).Result()
	if err == redis.Nil {
		return users.Actor{}, false, nil
	}
	if err != nil {
		return users.Actor{}, false, err
	}
	var a users.Actor
	if err := json.Unmarshal([]byte(v), &a); err != nil {
		return users.Actor{}, false, err
	}
	return a, true, nil
}

func (s *redisSessions) Delete(ctx context.Context, jti string) error {
	return s.client.Del(ctx, fmt.Sprintf(redisx.KeySession, jti)).Err()
}

// MemorySessions is the in-process variant used by tests and the memory
// store driver.
type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[string]memSession
}

type memSession struct {
	actor     users.Actor
	expiresAt time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]memSession)}
}

var _ SessionCache = (*MemorySessions)(nil)

func (s *MemorySessions) Put(ctx context.Context, jti string, actor users.Actor, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[jti] = memSession{actor: actor, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemorySessions) Get(ctx context.Context, jti string) (users.Actor, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[jti]
	if !ok || time.Now().After(sess.expiresAt) {
		return users.Actor{}, false, nil
	}
	return sess.actor, true, nil
}

func (s *MemorySessions) Delete(ctx context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, jti)
	return nil
}
