package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtgrid/internal/backend"
	"courtgrid/internal/config"
	"courtgrid/internal/logger"
	"courtgrid/internal/recurring"
	"courtgrid/internal/reservation"
	"courtgrid/internal/schedule"
	"courtgrid/internal/server"

	"github.com/redis/go-redis/v9"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis unavailable, availability cache degraded", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := recurring.NewManager(30 * time.Minute)
	sessions.StartSweeper(ctx)

	deps := server.Deps{
		Backend: backend.NewClient(cfg.BackendBaseURL, cfg.BackendToken, cfg.BackendTimeout),
		Store:   reservation.NewStore(),
		Cache:   schedule.NewCache(redisClient, cfg.AvailabilityTTL),
		Policy: &schedule.Policy{
			MinAdvance:     time.Duration(cfg.MinAdvanceHours) * time.Hour,
			MaxAdvanceDays: cfg.MaxAdvanceDays,
			AllowSameDay:   cfg.AllowSameDay,
		},
		Sessions: sessions,
	}

	srv := server.New(cfg, deps)

	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis client", "error", err)
	}

	logger.Info("server stopped")
	os.Exit(0)
}
