package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/absarsolarch/ab-3/internal/config"
	"github.com/absarsolarch/ab-3/internal/logger"
	"github.com/absarsolarch/ab-3/internal/service"
	"github.com/absarsolarch/ab-3/internal/session"
	"github.com/absarsolarch/ab-3/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	if cfg.HTTP.Addr == ":8080" && os.Getenv("HTTP_ADDR") == "" {
		// Both tiers default onto one host during development.
		cfg.HTTP.Addr = ":8081"
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format, "ab3-web")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	flash := session.NewStore(session.NewRedisKV(redisClient))

	client := service.NewListingClient(cfg.DataTierEndpoint, zl)
	handler := web.NewHandler(client, flash, cfg.DataTierEndpoint, zl)

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := service.NewServer(cfg.HTTP.Addr, mux, zl)

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
