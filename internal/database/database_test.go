package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franciscosanchezn/gin-recipes-api/internal/config"
	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

func TestDatabaseConfigDSN(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      DatabaseConfig
		expected string
	}{
		{
			name:     "sqlite uses the file path",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "recipes.sqlite"},
			expected: "recipes.sqlite",
		},
		{
			name: "postgres from discrete fields",
			cfg: DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "app",
				Password: "pw", Name: "recipes", SSLMode: "disable"},
			expected: "host=db user=app password=pw dbname=recipes port=5432 sslmode=disable",
		},
		{
			name:     "postgres url wins",
			cfg:      DatabaseConfig{Driver: "postgres", URL: "postgres://app:pw@db:5432/recipes", Host: "ignored"},
			expected: "postgres://app:pw@db:5432/recipes",
		},
		{
			name:     "unknown driver",
			cfg:      DatabaseConfig{Driver: "oracle"},
			expected: "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}

func TestDatabaseConfigStringMasksPassword(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", Password: "hunter2"}
	assert.NotContains(t, cfg.String(), "hunter2")
}

func TestNewDatabaseConfig(t *testing.T) {
	cfg := NewDatabaseConfig(&config.Config{DBDriver: "postgres", DBHost: "db", DBName: "recipes", DatabaseURL: "postgres://x"})
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "db", cfg.Host)
	assert.Equal(t, "postgres://x", cfg.URL)
}

func TestInitDatabaseSQLiteMigrateAndSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.sqlite")

	db, err := InitDatabase(context.Background(), DatabaseConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedTags(db))
	require.NoError(t, SeedTags(db))

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(len(DefaultTags)), count)
}

func TestInitDatabaseUnsupportedDriver(t *testing.T) {
	_, err := InitDatabase(context.Background(), DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
