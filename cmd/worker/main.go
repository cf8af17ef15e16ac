package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chotuoi/listing-pipeline/internal/bootstrap"
	"github.com/chotuoi/listing-pipeline/internal/config"
	"github.com/chotuoi/listing-pipeline/internal/observability/logging"
	"github.com/chotuoi/listing-pipeline/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeEnrichRequested(ctx, func(handlerCtx context.Context, productID string) error {
		enrichCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if product, getErr := app.Repo.GetByID(enrichCtx, productID); getErr == nil {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(product.CreatedAt))
		}

		workerMetrics.StartEnrichment()
		start := time.Now()
		enrichErr := app.EnrichUC.EnrichByID(enrichCtx, productID)
		workerMetrics.FinishEnrichment(serviceName, time.Since(start), enrichErr)
		return enrichErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
