package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Port         int           `json:"port"`
	Host         string        `json:"host"`
	Environment  string        `json:"environment"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	CORSOrigins  []string      `json:"cors_origins"`

	// Database configuration
	DatabaseURL string `json:"database_url"`
	DBDriver    string `json:"db_driver"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`

	// Redis backs request rate limiting; empty disables it
	RedisURL           string `json:"redis_url"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute"`

	// Image storage
	StorageDriver string `json:"storage_driver"`
	MediaRoot     string `json:"media_root"`
	MediaURL      string `json:"media_url"`
	S3Bucket      string `json:"s3_bucket"`
	S3Region      string `json:"s3_region"`
	S3PublicURL   string `json:"s3_public_url"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret     string        `json:"jwt_secret"`
	TokenTTL      time.Duration `json:"token_ttl"`
	OAuthClientID string        `json:"oauth_client_id"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, Environment: %s, DatabaseURL: %s, DBDriver: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], RedisURL: %s, StorageDriver: %s, LogLevel: %s, JWTSecret: [REDACTED], TokenTTL: %s}",
		c.Port, c.Host, c.Environment, maskDatabaseURL(c.DatabaseURL), c.DBDriver, c.DBHost, c.DBName, c.DBUser,
		maskDatabaseURL(c.RedisURL), c.StorageDriver, c.LogLevel, c.TokenTTL)
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates formats like DATABASE_URL, REDIS_URL and numeric settings
// Returns an error if any environment variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	tokenTTLHours, err := strconv.Atoi(GetEnvWithDefault("TOKEN_TTL_HOURS", "24"))
	if err != nil || tokenTTLHours <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS: must be a positive integer")
	}

	rateLimit, err := strconv.Atoi(GetEnvWithDefault("RATE_LIMIT_PER_MINUTE", "120"))
	if err != nil || rateLimit < 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: must be a non-negative integer")
	}

	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	if dbURL != "" {
		// validate URL with net/url
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	redisURL := GetEnvWithDefault("REDIS_URL", "")
	if redisURL != "" {
		if _, err := url.ParseRequestURI(redisURL); err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL format: %w", err)
		}
	}

	storageDriver := strings.ToLower(GetEnvWithDefault("STORAGE_DRIVER", "local"))
	if storageDriver != "local" && storageDriver != "s3" {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q (supported: local, s3)", storageDriver)
	}

	config := &Config{
		Port:               port,
		Host:               GetEnvWithDefault("APP_HOST", "localhost"),
		Environment:        GetEnvWithDefault("APP_ENV", "development"),
		ReadTimeout:        time.Duration(GetEnvAsType("HTTP_READ_TIMEOUT_SECONDS", 15)) * time.Second,
		WriteTimeout:       time.Duration(GetEnvAsType("HTTP_WRITE_TIMEOUT_SECONDS", 30)) * time.Second,
		CORSOrigins:        splitList(GetEnvWithDefault("CORS_ORIGINS", "http://localhost:3000")),
		DatabaseURL:        dbURL,
		DBDriver:           GetEnvWithDefault("DB_DRIVER", "sqlite"),
		DBHost:             GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:             GetEnvWithDefault("DB_PORT", "5432"),
		DBName:             GetEnvWithDefault("DB_NAME", "recipes"),
		DBUser:             GetEnvWithDefault("DB_USER", "user"),
		DBPassword:         GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:          GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:             GetEnvWithDefault("DB_PATH", "recipes.sqlite"),
		RedisURL:           redisURL,
		RateLimitPerMinute: rateLimit,
		StorageDriver:      storageDriver,
		MediaRoot:          GetEnvWithDefault("MEDIA_ROOT", "media"),
		MediaURL:           GetEnvWithDefault("MEDIA_URL", "/media"),
		S3Bucket:           GetEnvWithDefault("S3_BUCKET", ""),
		S3Region:           GetEnvWithDefault("S3_REGION", "us-east-1"),
		S3PublicURL:        GetEnvWithDefault("S3_PUBLIC_URL", ""),
		LogLevel:           GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:          GetEnvWithDefault("JWT_SECRET", "secret"),
		TokenTTL:           time.Duration(tokenTTLHours) * time.Hour,
		OAuthClientID:      GetEnvWithDefault("OAUTH_CLIENT_ID", "recipes-web"),
	}
	if config.StorageDriver == "s3" && config.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER is s3")
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// IsProduction reports whether the service runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
