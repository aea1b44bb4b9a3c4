//go:build integration

package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisCounter(t *testing.T) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	defer client.Close()

	counter := NewRedisCounter(client)
	for want := int64(1); want <= 3; want++ {
		got, err := counter.Incr(ctx, "rate_limit:test", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	ttl, err := client.TTL(ctx, "rate_limit:test").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	router := newLimitedRouter(NewRateLimiter(counter, RateLimitConfig{Window: time.Minute, Limit: 1, KeyPrefix: "it"}))
	assert.Equal(t, 200, get(router, "/ping", "").Code)
	assert.Equal(t, 429, get(router, "/ping", "").Code)
}
