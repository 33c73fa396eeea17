package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"buste/internal/amqp"
	"buste/internal/config"
	apphttp "buste/internal/http"
	applog "buste/internal/log"
	"buste/internal/predict"
	"buste/internal/services"
	"buste/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.ComponentApp, slog.LevelInfo)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
		logger.Error("Failed to run migrations", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	policy := predict.DefaultPolicy()
	if cfg.SurplusThresholdCents > 0 {
		policy.SurplusThreshold.Cents = cfg.SurplusThresholdCents
	}
	if cfg.RunwayDays > 0 {
		policy.RunwayDays = cfg.RunwayDays
	}
	if cfg.DefaultHorizonDays > 0 {
		policy.DefaultHorizonDays = cfg.DefaultHorizonDays
	}

	predictionSvc := services.NewPredictionService(repo, predict.NewEngine(policy))

	// AMQP is optional for the API server; without it payments still
	// apply, only payoff notifications are skipped.
	var publisher services.PayoffPublisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPPaymentQueue, cfg.AMQPNotifyQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, payoff notifications disabled", "error", err)
	} else {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	paymentSvc := services.NewPaymentService(repo, publisher)

	srv := apphttp.NewServer(":"+cfg.Port, predictionSvc, paymentSvc, cfg.PredictionCacheTTL)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting buste server", "port", cfg.Port, "cache_ttl", cfg.PredictionCacheTTL.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
