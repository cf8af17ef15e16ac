package ports

import (
	"context"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
)

// UploadInput carries one multipart upload into the pipeline.
type UploadInput struct {
	Filename    string
	MimeType    string
	Data        []byte
	Name        string
	Category    string
	Description string
}

// ProductUploader is the inbound contract for the synchronous upload path.
type ProductUploader interface {
	Upload(ctx context.Context, in UploadInput) (*domain.Product, domain.QualityReport, error)
}

// ProductReader is the inbound read model for status polling.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// ProductEnricher is the inbound contract for asynchronous enrichment.
type ProductEnricher interface {
	EnrichByID(ctx context.Context, productID string) error
}

// BatchResult reports the outcome of one id in a batch trigger.
type BatchResult struct {
	ProductID string `json:"productId"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// BatchTrigger re-enqueues existing products for enrichment, at most ten at a
// time, sequentially.
type BatchTrigger interface {
	TriggerBatch(ctx context.Context, productIDs []string) ([]BatchResult, error)
}

// TrendingService aggregates trending keywords across store, automation and AI.
type TrendingService interface {
	TrendingKeywords(ctx context.Context, category string, limit int) ([]domain.KeywordStat, error)
}
