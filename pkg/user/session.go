package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/forgevyn/zenzero/internal/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionKeyPrefix prefixes the key of every active session flag.
const SessionKeyPrefix = "zenzero_session_active:"

// SessionStore keeps the active-session flag of signed-in users, keyed by an opaque token.
type SessionStore interface {
	Create(ctx context.Context, userId int) (string, error)
	Lookup(ctx context.Context, token string) (int, error)
	Delete(ctx context.Context, token string) error
}

type memorySession struct {
	userId    int
	expiresAt time.Time
}

// MemorySessionStore loses every session on restart.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	clock    utils.Clock
	sessions map[string]memorySession
}

func NewMemorySessionStore(ttl time.Duration, clock utils.Clock) *MemorySessionStore {
	return &MemorySessionStore{ttl: ttl, clock: clock, sessions: map[string]memorySession{}}
}

func (s *MemorySessionStore) Create(_ context.Context, userId int) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memorySession{userId: userId, expiresAt: s.clock.Now().Add(s.ttl)}
	return token, nil
}

func (s *MemorySessionStore) Lookup(_ context.Context, token string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return 0, ErrSessionNotFound
	}
	if !s.clock.Now().Before(session.expiresAt) {
		delete(s.sessions, token)
		return 0, ErrSessionNotFound
	}
	return session.userId, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Create(ctx context.Context, userId int) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, SessionKeyPrefix+token, userId, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

func (s *RedisSessionStore) Lookup(ctx context.Context, token string) (int, error) {
	value, err := s.client.Get(ctx, SessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read session: %w", err)
	}
	userId, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("corrupted session %s: %w", token, err)
	}
	return userId, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, SessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
