package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Limiter is a fixed-window request counter keyed by client identity.
type Limiter interface {
	// Allow records a hit for key and reports whether it is within the
	// window's budget.
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit applies a limiter to incoming requests, keyed by client IP.
// Limiter errors fail open: an unreachable counter store must not take the
// storefront down with it.
func RateLimit(limiter Limiter, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				logger.Warn().Str("remote_addr", r.RemoteAddr).Str("path", r.URL.Path).Msg("rate limit exceeded")
				writeJSONError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP picks the rate-limit key. X-Forwarded-For may carry a whole proxy
// chain; only the first entry is the client.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// redisLimiter counts requests in Redis with INCR + EXPIRE, so the window is
// shared across replicas.
type redisLimiter struct {
	client  *redis.Client
	limit   int
	window  time.Duration
	keyBase string
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) Limiter {
	return &redisLimiter{
		client:  client,
		limit:   limit,
		window:  window,
		keyBase: "ratelimit:",
	}
}

// Allow records a hit and reports whether it is within budget.
func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.keyBase + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		// First hit of the window sets its expiry.
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.limit), nil
}

// memoryLimiter is the process-local fallback when Redis is not configured.
// Counts do not survive restarts and are not shared across replicas.
type memoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*windowEntry
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// NewMemoryLimiter creates an in-process fixed-window limiter.
func NewMemoryLimiter(limit int, window time.Duration) Limiter {
	return &memoryLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
	}
}

// Allow records a hit and reports whether it is within budget.
func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || now.After(entry.resetAt) {
		l.entries[key] = &windowEntry{count: 1, resetAt: now.Add(l.window)}
		return true, nil
	}

	entry.count++
	return entry.count <= l.limit, nil
}
