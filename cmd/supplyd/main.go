package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lmr105/supply-interruption-service/internal/adapter/httpapi"
	kafkaadapter "github.com/lmr105/supply-interruption-service/internal/adapter/kafka"
	"github.com/lmr105/supply-interruption-service/internal/analysis"
	"github.com/lmr105/supply-interruption-service/internal/config"
	"github.com/lmr105/supply-interruption-service/internal/observability"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	analyzer := analysis.New(logger, metrics, cfg.Analysis.Workers)

	// Summary publishing is feature-flagged via SUPPLY_KAFKA__ENABLED.
	var publisher httpapi.ResultPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.Kafka.Enabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		metrics.PublishEnabled.Set(1)
		logger.Info("summary publishing enabled", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	} else {
		logger.Info("summary publishing disabled")
	}

	srv := httpapi.NewServer(cfg, analyzer, publisher, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
