package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// =============================================================================
// RateLimiter Tests
// =============================================================================

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute, discardLogger())
	defer rl.Close()

	if rl.maxAttempts != 5 {
		t.Errorf("expected maxAttempts=5, got %d", rl.maxAttempts)
	}
	if rl.window != time.Minute {
		t.Errorf("expected window=1m, got %v", rl.window)
	}
	if rl.Name() != "memory" {
		t.Errorf("expected name memory, got %s", rl.Name())
	}
}

func TestRateLimiter_Allow_AtLimit(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute, discardLogger())
	defer rl.Close()

	for i := 0; i < 5; i++ {
		if !rl.Allow("192.168.1.1") {
			t.Errorf("request %d should be allowed", i+1)
		}
	}

	if rl.Allow("192.168.1.1") {
		t.Error("6th request should be denied")
	}
}

func TestRateLimiter_Allow_DifferentIPs(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, discardLogger())
	defer rl.Close()

	rl.Allow("192.168.1.1")
	rl.Allow("192.168.1.1")
	if rl.Allow("192.168.1.1") {
		t.Error("IP 1 should be rate limited")
	}

	// IP 2 has its own window
	if !rl.Allow("192.168.1.2") {
		t.Error("IP 2 should not be rate limited")
	}
}

func TestRateLimiter_Allow_WindowExpiry(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond, discardLogger())
	defer rl.Close()

	rl.Allow("192.168.1.1")
	rl.Allow("192.168.1.1")
	if rl.Allow("192.168.1.1") {
		t.Error("should be rate limited")
	}

	time.Sleep(60 * time.Millisecond)

	if !rl.Allow("192.168.1.1") {
		t.Error("should be allowed after window expires")
	}
}

func TestRateLimiter_Take(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, discardLogger())
	defer rl.Close()

	allowed, _, err := rl.Take(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, retry, err := rl.Take(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retry, 50*time.Second)

	rl.Reset("k")
	allowed, _, _ = rl.Take(context.Background(), "k")
	assert.True(t, allowed)
}

// =============================================================================
// RedisRateLimiter Tests
// =============================================================================

func newRedisLimiter(t *testing.T, max int, window time.Duration) (*RedisRateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRateLimiter(client, "ratelimit:", max, window), mr
}

func TestRedisRateLimiter_FixedWindow(t *testing.T) {
	rl, mr := newRedisLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := rl.Take(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
	}

	allowed, retry, err := rl.Take(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retry, time.Duration(0))
	assert.LessOrEqual(t, retry, time.Minute)

	// The window's TTL was set once, by the first request.
	assert.Equal(t, "4", mustGet(t, mr, "ratelimit:203.0.113.7"))
	assert.LessOrEqual(t, mr.TTL("ratelimit:203.0.113.7"), time.Minute)

	mr.FastForward(time.Minute + time.Second)

	allowed, _, err = rl.Take(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, allowed, "new window")
}

func TestRedisRateLimiter_KeysAreIndependent(t *testing.T) {
	rl, _ := newRedisLimiter(t, 1, time.Minute)
	ctx := context.Background()

	allowed, _, err := rl.Take(ctx, "a")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = rl.Take(ctx, "b")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = rl.Take(ctx, "a")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedisRateLimiter_ServerDown(t *testing.T) {
	rl, mr := newRedisLimiter(t, 1, time.Minute)
	mr.Close()

	_, _, err := rl.Take(context.Background(), "a")
	assert.Error(t, err)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}

// =============================================================================
// RateLimitMiddleware Tests
// =============================================================================

type failingLimiter struct{}

func (failingLimiter) Take(context.Context, string) (bool, time.Duration, error) {
	return false, 0, errors.New("connection refused")
}

func (failingLimiter) Name() string { return "redis" }

func TestRateLimitMiddleware_BlocksAfterLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, discardLogger())
	defer rl.Close()
	wrapped := NewRateLimitMiddleware(rl, discardLogger()).Limit(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/ai/chat", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()

		wrapped.ServeHTTP(rec, req)

		if i < 2 && rec.Code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i+1, rec.Code)
		}
		if i == 2 && rec.Code != http.StatusTooManyRequests {
			t.Errorf("request %d: expected 429, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimitMiddleware_JSONResponse(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, discardLogger())
	defer rl.Close()
	wrapped := NewRateLimitMiddleware(rl, discardLogger()).Limit(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/api/tasks", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)

		if i == 0 {
			continue
		}
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "rate_limit", body["code"])
		assert.NotContains(t, body, "remaining", "remaining is reserved for the AI quota")
	}
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	wrapped := NewRateLimitMiddleware(failingLimiter{}, discardLogger()).Limit(okHandler())

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware_XForwardedFor(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, discardLogger())
	defer rl.Close()
	wrapped := NewRateLimitMiddleware(rl, discardLogger()).Limit(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/tasks", nil)
		req.RemoteAddr = "10.0.0.1:12345" // Proxy IP
		req.Header.Set("X-Forwarded-For", "203.0.113.195, 70.41.3.18, 150.172.238.178")
		rec := httptest.NewRecorder()

		wrapped.ServeHTTP(rec, req)

		if i < 2 && rec.Code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i+1, rec.Code)
		}
		if i == 2 && rec.Code != http.StatusTooManyRequests {
			t.Errorf("request %d: expected 429, got %d", i+1, rec.Code)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "192.168.1.1:12345", nil, "192.168.1.1"},
		{"remote addr without port", "192.168.1.1", nil, "192.168.1.1"},
		{"x-forwarded-for", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"}, "203.0.113.195"},
		{"x-real-ip", "10.0.0.1:1", map[string]string{"X-Real-IP": " 203.0.113.9 "}, "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
