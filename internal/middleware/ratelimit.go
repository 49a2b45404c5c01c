package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soloura-backend/pkg/clientip"
)

const (
	// RateLimitWindow is 120 seconds
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 25
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked
	BlockedIPDuration = 24 * time.Hour
)

// RateLimit is a Redis fixed-window limiter shared by every instance. An IP that
// exceeds the window is blocked for BlockedIPDuration.
type RateLimit struct {
	client *redis.Client
	logger *zap.Logger
	max    int
	window time.Duration
	block  time.Duration
}

func NewRateLimit(client *redis.Client, logger *zap.Logger) *RateLimit {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimit{
		client: client,
		logger: logger.Named("ratelimit"),
		max:    RateLimitMaxRequests,
		window: RateLimitWindow,
		block:  BlockedIPDuration,
	}
}

// Handler guards the AI routes. Redis failures fail open.
func (l *RateLimit) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ipAddress := clientip.ForwardedClientIP(r)

		blocked, err := l.IsBlocked(ctx, ipAddress)
		if err == nil && blocked {
			writeJSONError(w, http.StatusTooManyRequests, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
			return
		}

		count, err := l.hit(ctx, ipAddress)
		if err != nil {
			l.logger.Warn("rate limit check failed, allowing request", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(l.max) {
			if err := l.client.Set(ctx, BlockedIPKeyPrefix+ipAddress, "1", l.block).Err(); err != nil {
				l.logger.Warn("failed to block ip", zap.String("ip", ipAddress), zap.Error(err))
			} else {
				l.logger.Info("ip blocked", zap.String("ip", ipAddress), zap.Int64("count", count))
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"success":false,"message":"Rate limit exceeded. Your IP has been temporarily blocked. Please try again later.","retry_after":%d}`, int(l.window.Seconds()))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.max))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(l.max)-count, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(l.window).Unix(), 10))
		next.ServeHTTP(w, r)
	})
}

// hit counts one request in the current window. The window starts at the first request.
func (l *RateLimit) hit(ctx context.Context, ipAddress string) (int64, error) {
	key := RateLimitKeyPrefix + ipAddress
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Unblock removes an IP from the blocked list.
func (l *RateLimit) Unblock(ctx context.Context, ipAddress string) error {
	return l.client.Del(ctx, BlockedIPKeyPrefix+ipAddress).Err()
}

// IsBlocked checks if an IP is currently blocked.
func (l *RateLimit) IsBlocked(ctx context.Context, ipAddress string) (bool, error) {
	count, err := l.client.Exists(ctx, BlockedIPKeyPrefix+ipAddress).Result()
	return count > 0, err
}
