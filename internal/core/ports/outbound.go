package ports

import (
	"context"
	"io"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
)

// ProductRepository persists product records and their pipeline state.
// Stage-save methods return the record version after the write so the
// orchestrator can issue a conditional terminal write.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	MarkProcessing(ctx context.Context, id string) error
	SaveImageAnalysis(ctx context.Context, id string, analysis domain.ImageAnalysis) (int64, error)
	SaveGeneratedContent(ctx context.Context, id string, content domain.GeneratedContent, tone string) (int64, error)
	SavePricing(ctx context.Context, id string, pricing domain.PriceSuggestion) (int64, error)
	Complete(ctx context.Context, id string, version int64, completion domain.Completion) error
	MarkFailed(ctx context.Context, id string, errMessage string) error
	TrendingKeywords(ctx context.Context, category string, limit int) ([]domain.KeywordStat, error)
}

// ObjectStorage stores original uploads and generated variants.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// EnrichQueue hands product ids from the upload path to the worker.
type EnrichQueue interface {
	PublishEnrichRequested(ctx context.Context, productID string) error
	SubscribeEnrichRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// ImageProcessor validates an upload, produces the variant set and computes
// the quality heuristics.
type ImageProcessor interface {
	Process(ctx context.Context, data []byte, filename, mimeType string) (*domain.ImageSet, domain.QualityReport, error)
}

// ImageAnalyzer runs the first enrichment stage against the AI provider.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, imageB64, declaredCategory string) (domain.ImageAnalysis, error)
}

// ContentGenerator runs the second enrichment stage.
type ContentGenerator interface {
	Generate(ctx context.Context, analysis domain.ImageAnalysis, opts domain.GenerationOptions) (domain.GeneratedContent, error)
}

// PriceSuggester runs the third enrichment stage.
type PriceSuggester interface {
	Suggest(ctx context.Context, analysis domain.ImageAnalysis) (domain.PriceSuggestion, error)
}

// KeywordSuggester asks the AI provider for fresh trending keywords.
type KeywordSuggester interface {
	SuggestTrending(ctx context.Context, category string, limit int) ([]string, error)
}

// AutomationClient talks to the external workflow-automation system.
// Notify is fire-and-forget: delivery failure never affects record state.
type AutomationClient interface {
	Notify(ctx context.Context, event string, data any) error
	FetchTrending(ctx context.Context, category string) ([]domain.KeywordStat, error)
}

// TrendCache is the bounded TTL cache fronting automation trend data.
type TrendCache interface {
	Get(category string) ([]domain.KeywordStat, bool)
	Set(category string, stats []domain.KeywordStat)
}
