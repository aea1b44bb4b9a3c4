//go:build integration

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

func startContainer(t *testing.T, req testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })
	return container
}

func TestPostgresMigrationsAndUniqueTranslation(t *testing.T) {
	ctx := context.Background()
	container := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "recipes",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := InitDatabase(ctx, DatabaseConfig{
		Driver: "postgres", Host: host, Port: port.Port(),
		User: "test", Password: "test", Name: "recipes", SSLMode: "disable",
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, SeedTags(db))

	salt := models.Ingredient{Name: "salt", MeasurementUnit: "g"}
	require.NoError(t, db.Create(&salt).Error)
	err = db.Create(&models.Ingredient{Name: "salt", MeasurementUnit: "g"}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "expected duplicate key, got %v", err)
}

func TestRedisClient(t *testing.T) {
	ctx := context.Background()
	container := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()))
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
	assert.Equal(t, "v", client.Get(ctx, "k").Val())
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
