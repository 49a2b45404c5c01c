package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soloura-backend/internal/models"
)

type AuthEventType string

const (
	// EventInitial is the first event of every stream: the state at subscription time.
	EventInitial        AuthEventType = "initial"
	EventSignedIn       AuthEventType = "signed_in"
	EventSignedOut      AuthEventType = "signed_out"
	EventTokenRefreshed AuthEventType = "token_refreshed"
	EventEmailVerified  AuthEventType = "email_verified"
)

// AuthEvent is one auth-state transition. User is nil after sign-out.
type AuthEvent struct {
	Type AuthEventType    `json:"type"`
	User *models.Identity `json:"user"`
	At   time.Time        `json:"at"`
}

// AuthBus fans auth-state transitions out to every subscriber of a user.
type AuthBus interface {
	Publish(ctx context.Context, userID string, ev AuthEvent) error
	// Subscribe streams userID's events until ctx is cancelled, then closes the channel.
	Subscribe(ctx context.Context, userID string) (<-chan AuthEvent, error)
}

const subscriberBuffer = 8

// LocalAuthBus delivers events within one process. A subscriber that falls more than
// subscriberBuffer events behind misses events rather than blocking publishers.
type LocalAuthBus struct {
	mu     sync.Mutex
	subs   map[string]map[chan AuthEvent]struct{}
	logger *zap.Logger
}

func NewLocalAuthBus(logger *zap.Logger) *LocalAuthBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalAuthBus{subs: make(map[string]map[chan AuthEvent]struct{}), logger: logger}
}

func (b *LocalAuthBus) Publish(_ context.Context, userID string, ev AuthEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[userID] {
		select {
		case ch <- ev:
		default:
			b.logger.Warn("auth event dropped for slow subscriber", zap.String("user_id", userID), zap.String("type", string(ev.Type)))
		}
	}
	return nil
}

func (b *LocalAuthBus) Subscribe(ctx context.Context, userID string) (<-chan AuthEvent, error) {
	ch := make(chan AuthEvent, subscriberBuffer)

	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan AuthEvent]struct{})
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[userID], ch)
		if len(b.subs[userID]) == 0 {
			delete(b.subs, userID)
		}
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}

// AuthChannelPrefix is the Redis pub/sub channel prefix for per-user auth events
const AuthChannelPrefix = "auth:user:"

// RedisAuthBus delivers events across server instances over Redis pub/sub.
type RedisAuthBus struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisAuthBus(client *redis.Client, logger *zap.Logger) *RedisAuthBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisAuthBus{client: client, logger: logger}
}

func (b *RedisAuthBus) Publish(ctx context.Context, userID string, ev AuthEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, AuthChannelPrefix+userID, payload).Err()
}

func (b *RedisAuthBus) Subscribe(ctx context.Context, userID string) (<-chan AuthEvent, error) {
	ps := b.client.Subscribe(ctx, AuthChannelPrefix+userID)
	// Wait for the subscription confirmation so no event published after Subscribe
	// returns is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe to auth events: %w", err)
	}

	out := make(chan AuthEvent, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev AuthEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.logger.Warn("malformed auth event", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
