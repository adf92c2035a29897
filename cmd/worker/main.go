package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipebox/config"
	"recipebox/internal/database"
	"recipebox/internal/jobs"
	"recipebox/internal/logging"
	"recipebox/internal/telemetry"
)

const workerConcurrency = 10

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(cfg.IsDevelopment())

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Init(ctx, "recipebox-worker", cfg.OTelEndpoint)
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logging.Logger().Error().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	if err := database.Connect(cfg.DatabaseURL, cfg.IsDevelopment()); err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	server, err := jobs.NewServer(cfg.RedisURL, workerConcurrency)
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to create worker")
	}

	if err := server.Start(); err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to start worker")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	server.Shutdown()
}
