package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/weather-probability-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-probability-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-probability-service/internal/adapter/power"
	"github.com/couchcryptid/weather-probability-service/internal/adapter/synthetic"
	"github.com/couchcryptid/weather-probability-service/internal/config"
	"github.com/couchcryptid/weather-probability-service/internal/domain"
	"github.com/couchcryptid/weather-probability-service/internal/observability"
	"github.com/couchcryptid/weather-probability-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Sample source (feature-flagged via POWER_ENABLED).
	var source domain.SampleSource
	if cfg.PowerEnabled {
		source = power.NewClient(cfg.PowerBaseURL, cfg.PowerTimeout, metrics, logger)
		logger.Info("nasa power source enabled", "base_url", cfg.PowerBaseURL, "timeout", cfg.PowerTimeout)
	} else {
		source = synthetic.New(cfg.SyntheticSeed, logger)
		logger.Info("synthetic source enabled", "seed", cfg.SyntheticSeed)
	}

	// Report publisher (feature-flagged via KAFKA_ENABLED).
	var publisher *kafkaadapter.Publisher
	var reportSink service.ReportPublisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		reportSink = publisher
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	settings := domain.Settings{
		DefaultYears:      cfg.DefaultYears,
		MinYears:          cfg.MinYears,
		MaxYears:          cfg.MaxYears,
		DefaultWindowDays: cfg.DefaultWindowDays,
	}

	analyzer := service.New(source, settings, reportSink, logger, metrics)

	var svc httpadapter.AnalyzeService = analyzer
	if cfg.CacheEnabled {
		svc = service.NewCached(analyzer, cfg.CacheSize, cfg.CacheTTL, clockwork.NewRealClock(), metrics)
		metrics.CacheEnabled.Set(1)
		logger.Info("result cache enabled", "size", cfg.CacheSize, "ttl", cfg.CacheTTL)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, analyzer, metrics, logger)

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
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
