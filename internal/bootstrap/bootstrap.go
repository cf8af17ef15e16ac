package bootstrap

import (
	"context"
	"fmt"

	"github.com/chotuoi/listing-pipeline/internal/config"
	"github.com/chotuoi/listing-pipeline/internal/core/ports"
	"github.com/chotuoi/listing-pipeline/internal/core/usecase"
	"github.com/chotuoi/listing-pipeline/internal/infrastructure/imageproc"
	"github.com/chotuoi/listing-pipeline/internal/infrastructure/llm/gemini"
	"github.com/chotuoi/listing-pipeline/internal/infrastructure/queue/nats"
	"github.com/chotuoi/listing-pipeline/internal/infrastructure/repository/postgres"
	"github.com/chotuoi/listing-pipeline/internal/infrastructure/resilience"
	"github.com/chotuoi/listing-pipeline/internal/infrastructure/storage/localfs"
	"github.com/chotuoi/listing-pipeline/internal/infrastructure/trendcache"
	"github.com/chotuoi/listing-pipeline/internal/infrastructure/webhook"
)

type App struct {
	Config config.Config

	Queue   ports.EnrichQueue
	Repo    ports.ProductRepository
	Storage *localfs.Storage
	Cache   ports.TrendCache

	UploadUC   ports.ProductUploader
	GetUC      ports.ProductReader
	EnrichUC   ports.ProductEnricher
	BatchUC    ports.BatchTrigger
	TrendingUC ports.TrendingService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewProductRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	geminiClient := gemini.New(gemini.Options{
		BaseURL:           cfg.GeminiBaseURL,
		APIKey:            cfg.GeminiAPIKey,
		Model:             cfg.GeminiModel,
		RequestsPerMinute: cfg.GeminiRequestsPerMinute,
		Executor:          executor,
	})
	analyzer := gemini.NewAnalyzer(geminiClient)
	generator := gemini.NewGenerator(geminiClient)
	pricer := gemini.NewPriceSuggester(geminiClient)
	keywordSuggester := gemini.NewKeywordSuggester(geminiClient)

	processor := imageproc.NewProcessor(
		storage,
		imageproc.DefaultSizes(),
		cfg.ImageQuality,
		cfg.MaxUploadBytes,
		cfg.CompressImages,
	)

	notifier := webhook.New(webhook.Options{
		BaseURL: cfg.AutomationWebhookURL,
		APIKey:  cfg.AutomationWebhookKey,
	})

	cache := trendcache.New(cfg.TrendCacheSize, cfg.TrendCacheTTL)

	uploadUC := usecase.NewUploadProductUseCase(repo, processor, queue, notifier)
	getUC := usecase.NewGetProductUseCase(repo)
	enrichUC := usecase.NewEnrichProductUseCase(
		repo, storage, analyzer, generator, pricer, notifier,
		geminiClient.Model(), cfg.EnrichStageTimeout,
	)
	batchUC := usecase.NewBatchEnrichUseCase(repo, queue, cfg.BatchMaxProducts)
	trendingUC := usecase.NewTrendingKeywordsUseCase(repo, notifier, keywordSuggester, cache)

	return &App{
		Config: cfg,

		Queue:   queue,
		Repo:    repo,
		Storage: storage,
		Cache:   cache,

		UploadUC:   uploadUC,
		GetUC:      getUC,
		EnrichUC:   enrichUC,
		BatchUC:    batchUC,
		TrendingUC: trendingUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
