// Command server runs the denuncias backend engine over HTTP.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"denuncias/internal/cache"
	"denuncias/internal/config"
	"denuncias/internal/dispatch"
	"denuncias/internal/observability"
	"denuncias/internal/query"
	"denuncias/internal/seed"
	"denuncias/internal/server"
	"denuncias/internal/session"
	"denuncias/internal/store"

	"github.com/redis/go-redis/v9"
)

// @title Denuncias API
// @version 1.0
// @description Reporting backend with row-level permissions, sessions and derived cache views

// @host localhost:8375
// @BasePath /
// @schemes http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session access token.

//go:generate swag init -d ../../ -g cmd/server/main.go -o ../../internal/docs

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.Configure(cfg.Env, cfg.LogLevel)
	logger := observability.GlobalLogger

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "denuncias",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	fixture, err := loadFixture(cfg)
	if err != nil {
		log.Fatalf("Failed to load seed: %v", err)
	}
	s := store.New(fixture)
	d := dispatch.New(dispatch.Deps{
		Store:    s,
		Executor: query.NewExecutor(s),
		Sessions: session.NewManager(s, cfg.JWTSecret,
			session.WithTTL(cfg.SessionTTL),
			session.WithBcryptCost(cfg.BcryptCost),
		),
	})

	var (
		observer    cache.Observer
		redisClient *redis.Client
	)
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, view publishing disabled", slog.String("error", err.Error()))
			redisClient = nil
		} else {
			observer = cache.NewRedisPublisher(redisClient, cache.ViewTTL)
		}
	}

	srv := server.NewServerWithDeps(cfg, d, observer, redisClient)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}

func loadFixture(cfg *config.Config) (*seed.Fixture, error) {
	if cfg.SeedFile != "" {
		return seed.LoadFile(cfg.SeedFile, cfg.BcryptCost)
	}
	return seed.Default(cfg.BcryptCost)
}
