package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/absarsolarch/ab-3/internal/config"
	"github.com/absarsolarch/ab-3/internal/httpapi"
	"github.com/absarsolarch/ab-3/internal/logger"
	"github.com/absarsolarch/ab-3/internal/repository"
	"github.com/absarsolarch/ab-3/internal/service"
	"github.com/absarsolarch/ab-3/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format, "ab3-data")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	// Backend selection happens exactly once; the handle lives for the whole
	// process. An unavailable backend is not fatal: the API stays up and
	// reports the outage on every call.
	selector := repository.NewSelector(cfg, zl)
	repo, backend, err := selector.Select(context.Background())
	if err != nil {
		zl.Warn("no backend available, serving in disconnected mode", zap.Error(err))
	}

	// Sessions ride on Redis regardless of which backend holds the records,
	// so direct-mode outcomes reach the presentation tier.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	flash := session.NewStore(session.NewRedisKV(redisClient))

	dispatcher := service.NewCallbackDispatcher(zl)
	handler := httpapi.NewPropertyHandler(repo, backend, dispatcher, flash, cfg.FrontendURL, cfg.Debug, zl)

	router := httpapi.NewRouter(zl)
	router.RegisterPropertyRoutes(handler)

	srv := service.NewServer(cfg.HTTP.Addr, router, zl)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		zl.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
}
