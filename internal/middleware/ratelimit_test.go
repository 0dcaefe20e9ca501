package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickethub/helpdesk-api/internal/config"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func limiterApp(cfg config.RateLimitConfig, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, NewTokenBucket(cfg, rdb))
	return e
}

func hitLogin(e *echo.Echo) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucket_ExhaustionReturns429(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := limiterApp(cfg, testRedis(t))

	first := hitLogin(e)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := hitLogin(e)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := hitLogin(e)
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.JSONEq(t, `{"errors":{"details":"Too many requests, slow down"}}`, third.Body.String())
	assert.NotEmpty(t, third.Header().Get("Retry-After"))
}

func TestTokenBucket_BucketsAreKeyedPerRoute(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	rdb := testRedis(t)

	e := echo.New()
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	mw := NewTokenBucket(cfg, rdb)
	e.POST("/login", handler, mw)
	e.POST("/signup", handler, mw)

	// Draining the /login bucket must not affect /signup.
	require.Equal(t, http.StatusOK, hitLogin(e).Code)
	assert.Equal(t, http.StatusTooManyRequests, hitLogin(e).Code)

	req := httptest.NewRequest(http.MethodPost, "/signup", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenBucket_DisabledIsNoOp(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false, Capacity: 1}
	e := limiterApp(cfg, testRedis(t))

	for i := 0; i < 5; i++ {
		rec := hitLogin(e)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestTokenBucket_NilRedisIsNoOp(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1}
	e := limiterApp(cfg, nil)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hitLogin(e).Code)
	}
}

// A limiter pointed at a dead Redis lets requests through instead of
// failing them.
func TestTokenBucket_FailsOpenOnRedisError(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
	}
	e := limiterApp(cfg, rdb)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hitLogin(e).Code)
	}
}
