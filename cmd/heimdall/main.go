package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/heimdall-auth/heimdall/adapters/cache"
	"github.com/heimdall-auth/heimdall/adapters/events"
	"github.com/heimdall-auth/heimdall/adapters/repository"
	"github.com/heimdall-auth/heimdall/adapters/tokenizer"
	"github.com/heimdall-auth/heimdall/ports"
	"github.com/heimdall-auth/heimdall/service"
	transport "github.com/heimdall-auth/heimdall/transport/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// The environment is read exactly once, here. Every component below
	// receives its configuration through constructors.
	cfg := loadConfig()
	if len(cfg.service.AccessSecret) == 0 || len(cfg.service.RefreshSecret) == 0 {
		logger.Error("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
		os.Exit(1)
	}

	opts, err := redis.ParseURL(cfg.redisURL)
	if err != nil {
		logger.Error("failed to parse Redis URL", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(opts)

	wmLogger := watermill.NewSlogLogger(logger)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		wmLogger,
	)
	if err != nil {
		logger.Error("failed to create Redis publisher", "error", err)
		os.Exit(1)
	}

	clock := ports.SystemClock{}

	jwtTokenizer := tokenizer.NewJWTTokenizer(
		cfg.service.AccessSecret,
		cfg.service.RefreshSecret,
		cfg.service.AccessTTL,
		cfg.service.RefreshTTL,
		clock,
	)
	redisCache := cache.NewRedisCache(redisClient)
	users := repository.NewMemoryUserRepository(clock)
	eventPub := events.NewWatermillPublisher(publisher)

	authService := service.NewAuthService(cfg.service, jwtTokenizer, redisCache, users, eventPub, clock, logger)

	router := transport.SetupRouter(authService)

	logger.Info("starting server", "addr", cfg.listenAddr)
	if err := router.Run(cfg.listenAddr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	listenAddr string
	redisURL   string
	service    service.Config
}

func loadConfig() appConfig {
	cfg := appConfig{
		listenAddr: envOr("LISTEN_ADDR", ":9000"),
		redisURL:   envOr("REDIS_URL", "redis://localhost:6379/0"),
		service: service.Config{
			AccessSecret:  []byte(envOr("ACCESS_TOKEN_SECRET", "")),
			RefreshSecret: []byte(envOr("REFRESH_TOKEN_SECRET", "")),
		},
	}

	if d, err := time.ParseDuration(envOr("ACCESS_TOKEN_TTL", "")); err == nil {
		cfg.service.AccessTTL = d
	}
	if d, err := time.ParseDuration(envOr("REFRESH_TOKEN_TTL", "")); err == nil {
		cfg.service.RefreshTTL = d
	}

	return cfg
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
