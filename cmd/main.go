package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/auth"
	"github.com/franciscosanchezn/gin-recipes-api/internal/config"
	"github.com/franciscosanchezn/gin-recipes-api/internal/controllers"
	"github.com/franciscosanchezn/gin-recipes-api/internal/database"
	"github.com/franciscosanchezn/gin-recipes-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipes-api/internal/router"
	"github.com/franciscosanchezn/gin-recipes-api/internal/services"
	"github.com/franciscosanchezn/gin-recipes-api/internal/storage"
)

// @title Recipes API
// @version 1.0
// @description Recipe sharing service: recipes, favorites, shopping cart and author subscriptions
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load environment variables
	loadDotenvFile()

	// Load configuration
	configuration := loadConfig()

	// Initialize loggers
	setUpLogger(configuration)

	db := setupDatabase(ctx, configuration)
	images := setupImageStore(ctx, configuration)

	redisClient := setupRedis(ctx, configuration)
	if redisClient != nil {
		defer redisClient.Close()
	}

	if configuration.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.SetupRouter(router.Dependencies{
		Config:      configuration,
		DB:          db,
		Images:      images,
		RateLimiter: setupRateLimiter(redisClient, configuration),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", configuration.Host, configuration.Port),
		Handler:      engine,
		ReadTimeout:  configuration.ReadTimeout,
		WriteTimeout: configuration.WriteTimeout,
	}

	go func() {
		log.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server stopped")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger sets the log level from APP_ENV, or from LOG_LEVEL when it is set,
// on the standard logger and on every package logger
func setUpLogger(conf *config.Config) {
	log.SetFormatter(&log.JSONFormatter{})

	var level log.Level
	switch conf.Environment {
	case "development":
		level = log.DebugLevel
	case "production":
		level = log.ErrorLevel
	default:
		level = log.InfoLevel
	}
	if config.GetEnvWithDefault("LOG_LEVEL", "") != "" {
		parsed, err := log.ParseLevel(conf.LogLevel)
		if err != nil {
			log.WithError(err).Warnf("Ignoring invalid LOG_LEVEL %q", conf.LogLevel)
		} else {
			level = parsed
		}
	}

	log.SetLevel(level)
	for _, setLevel := range []func(log.Level){
		auth.SetLogLevel,
		controllers.SetLogLevel,
		database.SetLogLevel,
		middleware.SetLogLevel,
		services.SetLogLevel,
		storage.SetLogLevel,
	} {
		setLevel(level)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase connects, migrates the schema and seeds the reference data
func setupDatabase(ctx context.Context, conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(ctx, database.NewDatabaseConfig(conf))
	checkPanicErr(err)

	checkPanicErr(database.Migrate(db))
	checkPanicErr(database.SeedTags(db))

	// The first-party web client logs in through the password grant without a secret
	err = services.NewClientService(db).EnsurePublicClient(ctx, conf.OAuthClientID, "Recipes web")
	checkPanicErr(err)
	return db
}

func setupImageStore(ctx context.Context, conf *config.Config) storage.ImageStore {
	images, err := storage.NewImageStore(ctx, storage.Config{
		Driver:      conf.StorageDriver,
		MediaRoot:   conf.MediaRoot,
		MediaURL:    conf.MediaURL,
		S3Bucket:    conf.S3Bucket,
		S3Region:    conf.S3Region,
		S3PublicURL: conf.S3PublicURL,
	})
	checkPanicErr(err)
	return images
}

// setupRedis connects to Redis when REDIS_URL is set. The service runs
// without rate limiting when Redis is absent or unreachable.
func setupRedis(ctx context.Context, conf *config.Config) *redis.Client {
	if conf.RedisURL == "" {
		log.Info("REDIS_URL not set, rate limiting disabled")
		return nil
	}
	client, err := database.NewRedisClient(ctx, conf.RedisURL)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, rate limiting disabled")
		return nil
	}
	return client
}

func setupRateLimiter(client *redis.Client, conf *config.Config) *middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return middleware.NewRateLimiter(middleware.NewRedisCounter(client), middleware.RateLimitConfig{
		Window: time.Minute,
		Limit:  conf.RateLimitPerMinute,
	})
}
