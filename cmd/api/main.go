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

	httpadapter "github.com/chotuoi/listing-pipeline/internal/adapters/http"
	"github.com/chotuoi/listing-pipeline/internal/bootstrap"
	"github.com/chotuoi/listing-pipeline/internal/config"
	"github.com/chotuoi/listing-pipeline/internal/observability/logging"
	"github.com/chotuoi/listing-pipeline/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(httpadapter.RouterOptions{
		Uploader:       app.UploadUC,
		Reader:         app.GetUC,
		Batch:          app.BatchUC,
		Trending:       app.TrendingUC,
		Cache:          app.Cache,
		Metrics:        metrics.NewHTTPServerMetrics("api"),
		WebhookKey:     cfg.AutomationWebhookKey,
		FilesDir:       app.Storage.BasePath(),
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}
