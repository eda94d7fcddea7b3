package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_EnforcesLimit(t *testing.T) {
	limiter := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed, "request over the limit should be rejected")
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different client starts its own window.
	allowed, err = limiter.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	limiter := NewMemoryLimiter(1, 10*time.Millisecond)
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "1.2.3.4")
	assert.True(t, allowed)

	allowed, _ = limiter.Allow(ctx, "1.2.3.4")
	assert.False(t, allowed)

	time.Sleep(20 * time.Millisecond)

	allowed, _ = limiter.Allow(ctx, "1.2.3.4")
	assert.True(t, allowed, "a new window should admit requests again")
}

// errorLimiter always fails, standing in for an unreachable counter store.
type errorLimiter struct{}

func (errorLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return false, errors.New("counter store unreachable")
}

func TestRateLimit_FailsOpenOnLimiterError(t *testing.T) {
	handlerCalled := false
	handler := RateLimit(errorLimiter{}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_RejectsOverBudget(t *testing.T) {
	handler := RateLimit(NewMemoryLimiter(1, time.Minute), zerolog.Nop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = "1.2.3.4:5678"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error": "too many requests"}`, w.Body.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	// The forwarding header, when present, wins over the socket address.
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", clientIP(req))

	// A proxy chain keys on the originating client, not the whole list.
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2, 10.0.0.3")
	assert.Equal(t, "203.0.113.9", clientIP(req))

	// A header that is nothing but separators falls back to the socket.
	req.Header.Set("X-Forwarded-For", " , ")
	assert.Equal(t, "10.0.0.1", clientIP(req))
}
