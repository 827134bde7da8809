// Command riskd serves the parcel risk API: POST /risk computes a
// multi-peril risk score and premium for a GeoJSON parcel polygon.
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

	httpadapter "github.com/cropshield/parcel-risk-service/internal/adapter/http"
	kafkaadapter "github.com/cropshield/parcel-risk-service/internal/adapter/kafka"
	"github.com/cropshield/parcel-risk-service/internal/config"
	"github.com/cropshield/parcel-risk-service/internal/domain"
	"github.com/cropshield/parcel-risk-service/internal/observability"
	"github.com/cropshield/parcel-risk-service/internal/quote"
	"github.com/cropshield/parcel-risk-service/internal/store"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source, closeSource, err := newSampleSource(cfg)
	if err != nil {
		logger.Error("failed to open sample source", "error", err)
		os.Exit(1)
	}
	defer closeSource()
	logger.Info("sample source ready", "backend", cfg.SampleSource)

	// Report publishing is feature-flagged via KAFKA_ENABLED.
	var publisher quote.ReportPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		metrics.PublishEnabled.Set(1)
		logger.Info("report publishing enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("report publishing disabled")
	}

	service := quote.New(source, publisher, cfg, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, service, logger)

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
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newSampleSource selects the configured backend. The returned closer is a
// no-op for the CSV source.
func newSampleSource(cfg *config.Config) (domain.SampleSource, func(), error) {
	if cfg.SampleSource == config.SourcePostgres {
		pg, err := store.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { pg.Close() }, nil
	}
	return store.NewCSVSource(cfg.SampleDataDir), func() {}, nil
}
