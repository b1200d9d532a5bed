package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/keepup/internal/app"
	"github.com/felixgeelhaar/keepup/internal/habits/application/subscribers"
	"github.com/felixgeelhaar/keepup/internal/habits/application/workers"
	"github.com/felixgeelhaar/keepup/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/keepup/pkg/config"
	"github.com/felixgeelhaar/keepup/pkg/observability"
)

// version is set during build
var version = "dev"

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	logger.Info("starting keepup worker")

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	var opts []app.Option
	var prom *observability.PrometheusMetrics
	if cfg.WorkerMetricsEnabled {
		prom = observability.NewPrometheusMetrics()
		opts = append(opts, app.WithMetrics(prom))
	}

	container, err := app.NewContainer(ctx, cfg, logger, opts...)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	interval := cfg.WorkerRefreshInterval
	if interval <= 0 {
		interval = workers.DefaultRefreshInterval
	}
	container.Health.Register("snapshot", observability.FreshnessChecker("snapshot", 3*interval, container.Coordinator.LastSettled))

	// Confirmed transactions from other processes trigger a refresh.
	if cfg.RabbitMQURL != "" && cfg.WorkerConsumeConfirmed {
		consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:       cfg.RabbitMQURL,
			QueueName: eventbus.DefaultConsumerQueueName,
			Exchange:  eventbus.ExchangeName,
			Logger:    logger,
		}, nil)
		if err != nil {
			logger.Error("failed to start event consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()

		consumer.RegisterConsumer(subscribers.NewRefreshSubscriber(container.Coordinator, logger))
		consumer.RegisterConsumer(container.ActivitySubscriber)
		go func() {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error("event consumer stopped", "error", err)
				cancel()
			}
		}()
	}

	if cfg.WorkerHealthAddr != "" {
		startHealthServer(ctx, cfg.WorkerHealthAddr, container.Health, prom, logger)
	}

	worker := workers.NewRefreshWorker(container.Coordinator, container.ResolveSubject, interval,
		observability.LogOperation(logger, "refresh-worker"))
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("refresh worker failed", "error", err)
	}

	logger.Info("worker stopped")
}

func startHealthServer(ctx context.Context, addr string, health *observability.HealthRegistry, prom *observability.PrometheusMetrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		result := health.Check(checkCtx)
		w.Header().Set("Content-Type", "application/json")
		if result.Status == observability.HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(result)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		result := health.Check(checkCtx)
		w.Header().Set("Content-Type", "application/json")
		if snap, ok := result.Checks["snapshot"]; !ok || snap.Status != observability.HealthStatusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "not_ready",
				"error":  snap.Message,
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ready"})
	})

	if prom != nil {
		mux.Handle("/metrics", prom.Handler())
	}

	healthSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("health server starting", "addr", addr)
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()
}

func newLogger(cfg *config.Config) *slog.Logger {
	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	} else if cfg.LogFormat != "" {
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
	}
	if cfg.LogLevel != "" {
		logCfg.Level = observability.LogLevel(cfg.LogLevel)
	}
	logCfg.ServiceName = "keepup-worker"
	logCfg.ServiceVersion = version
	return observability.NewLogger(logCfg)
}
