package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/franciscosanchezn/gin-recipes-api/internal/metrics"
)

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (m *memoryCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int64)
	}
	m.counts[key]++
	return m.counts[key], nil
}

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return router
}

func TestRateLimiter(t *testing.T) {
	router := newLimitedRouter(NewRateLimiter(&memoryCounter{}, RateLimitConfig{Window: time.Minute, Limit: 2}))
	before := testutil.ToFloat64(metrics.RateLimitedRequests)

	for i := 0; i < 2; i++ {
		w := get(router, "/ping", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := get(router, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"code":"TOO_MANY_REQUESTS"`)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitedRequests))
}

func TestRateLimiterKeysByClient(t *testing.T) {
	router := newLimitedRouter(NewRateLimiter(&memoryCounter{}, RateLimitConfig{Window: time.Minute, Limit: 1}))

	first := httptest.NewRequest(http.MethodGet, "/ping", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	second := httptest.NewRequest(http.MethodGet, "/ping", nil)
	second.RemoteAddr = "10.0.0.2:1234"

	for _, req := range []*http.Request{first, second} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiterPassThrough(t *testing.T) {
	tests := []struct {
		name string
		rl   *RateLimiter
	}{
		{name: "nil limiter", rl: nil},
		{name: "no counter", rl: NewRateLimiter(nil, RateLimitConfig{Window: time.Minute, Limit: 1})},
		{name: "counter failure", rl: NewRateLimiter(&memoryCounter{err: errors.New("redis down")}, RateLimitConfig{Window: time.Minute, Limit: 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newLimitedRouter(tt.rl)
			for i := 0; i < 3; i++ {
				assert.Equal(t, http.StatusOK, get(router, "/ping", "").Code)
			}
		})
	}
}
