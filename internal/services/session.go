package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for the set of a user's session tokens
	UserSessionKeyPrefix = "user_session:"
	// ActionCodeKeyPrefix is the Redis key prefix for one-time email verification codes
	ActionCodeKeyPrefix = "verify_email:"
	// ActionCodeDuration is how long a verification code stays valid
	ActionCodeDuration = 24 * time.Hour
)

// SessionStore keeps the long-lived refresh sessions. A user may hold one per device;
// creating a session leaves the others alone.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	// Lookup returns the session's user id, or "" when the token is unknown or expired.
	Lookup(ctx context.Context, token string) (string, error)
	// Refresh restarts the 7-day timer.
	Refresh(ctx context.Context, token string) error
	Invalidate(ctx context.Context, token string) error
	// Sessions returns the user's live session tokens.
	Sessions(ctx context.Context, userID string) ([]string, error)
}

// ActionCodeStore issues one-time codes bound to a user id.
type ActionCodeStore interface {
	IssueCode(ctx context.Context, userID string) (string, error)
	// ConsumeCode returns the bound user id and deletes the code, or "" when unknown.
	ConsumeCode(ctx context.Context, code string) (string, error)
}

func newOpaqueToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}

// RedisSessionStore keeps sessions and action codes in Redis.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Create(ctx context.Context, userID string) (string, error) {
	if err := s.pruneUser(ctx, userID); err != nil {
		return "", err
	}

	token, err := newOpaqueToken()
	if err != nil {
		return "", err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, SessionKeyPrefix+token, userID, SessionDuration)
	pipe.SAdd(ctx, UserSessionKeyPrefix+userID, token)
	pipe.Expire(ctx, UserSessionKeyPrefix+userID, SessionDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisSessionStore) Lookup(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}
	userID, err := s.client.Get(ctx, SessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return userID, err
}

func (s *RedisSessionStore) Refresh(ctx context.Context, token string) error {
	userID, err := s.Lookup(ctx, token)
	if err != nil {
		return err
	}
	if userID == "" {
		return errors.New("session not found")
	}

	pipe := s.client.TxPipeline()
	pipe.Expire(ctx, SessionKeyPrefix+token, SessionDuration)
	pipe.Expire(ctx, UserSessionKeyPrefix+userID, SessionDuration)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSessionStore) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	userID, err := s.Lookup(ctx, token)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	if userID != "" {
		pipe.SRem(ctx, UserSessionKeyPrefix+userID, token)
	}
	pipe.Del(ctx, SessionKeyPrefix+token)
	_, err = pipe.Exec(ctx)
	return err
}

// Sessions returns the user's live session tokens.
func (s *RedisSessionStore) Sessions(ctx context.Context, userID string) ([]string, error) {
	if err := s.pruneUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.client.SMembers(ctx, UserSessionKeyPrefix+userID).Result()
}

// pruneUser drops tokens whose session key has already expired from the user's set.
func (s *RedisSessionStore) pruneUser(ctx context.Context, userID string) error {
	tokens, err := s.client.SMembers(ctx, UserSessionKeyPrefix+userID).Result()
	if err != nil || len(tokens) == 0 {
		return err
	}
	var stale []any
	for _, token := range tokens {
		n, err := s.client.Exists(ctx, SessionKeyPrefix+token).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			stale = append(stale, token)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	return s.client.SRem(ctx, UserSessionKeyPrefix+userID, stale...).Err()
}

func (s *RedisSessionStore) IssueCode(ctx context.Context, userID string) (string, error) {
	code, err := newOpaqueToken()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, ActionCodeKeyPrefix+code, userID, ActionCodeDuration).Err(); err != nil {
		return "", err
	}
	return code, nil
}

func (s *RedisSessionStore) ConsumeCode(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", nil
	}
	userID, err := s.client.GetDel(ctx, ActionCodeKeyPrefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return userID, err
}

type memorySession struct {
	userID  string
	expires time.Time
}

// MemorySessionStore is the in-process SessionStore and ActionCodeStore.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	codes    map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		codes:    make(map[string]memorySession),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Create(_ context.Context, userID string) (string, error) {
	token, err := newOpaqueToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for t, sess := range s.sessions {
		if !now.Before(sess.expires) {
			delete(s.sessions, t)
		}
	}
	s.sessions[token] = memorySession{userID: userID, expires: now.Add(SessionDuration)}
	return token, nil
}

func (s *MemorySessionStore) Lookup(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok || !s.now().Before(sess.expires) {
		return "", nil
	}
	return sess.userID, nil
}

func (s *MemorySessionStore) Refresh(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok || !s.now().Before(sess.expires) {
		return errors.New("session not found")
	}
	sess.expires = s.now().Add(SessionDuration)
	s.sessions[token] = sess
	return nil
}

func (s *MemorySessionStore) Invalidate(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemorySessionStore) Sessions(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tokens []string
	now := s.now()
	for t, sess := range s.sessions {
		if sess.userID == userID && now.Before(sess.expires) {
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}

func (s *MemorySessionStore) IssueCode(_ context.Context, userID string) (string, error) {
	code, err := newOpaqueToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.codes[code] = memorySession{userID: userID, expires: s.now().Add(ActionCodeDuration)}
	s.mu.Unlock()
	return code, nil
}

func (s *MemorySessionStore) ConsumeCode(_ context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[code]
	delete(s.codes, code)
	if !ok || !s.now().Before(c.expires) {
		return "", nil
	}
	return c.userID, nil
}
