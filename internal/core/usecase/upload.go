package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
	"github.com/chotuoi/listing-pipeline/internal/core/ports"
)

const placeholderDescription = "Đang xử lý mô tả sản phẩm..."

// UploadProductUseCase is the synchronous half of the pipeline: validate the
// upload, generate variants, persist the record in processing state and queue
// it for enrichment.
type UploadProductUseCase struct {
	repo      ports.ProductRepository
	processor ports.ImageProcessor
	queue     ports.EnrichQueue
	notifier  ports.AutomationClient
}

func NewUploadProductUseCase(
	repo ports.ProductRepository,
	processor ports.ImageProcessor,
	queue ports.EnrichQueue,
	notifier ports.AutomationClient,
) *UploadProductUseCase {
	return &UploadProductUseCase{
		repo:      repo,
		processor: processor,
		queue:     queue,
		notifier:  notifier,
	}
}

func (uc *UploadProductUseCase) Upload(ctx context.Context, in ports.UploadInput) (*domain.Product, domain.QualityReport, error) {
	if err := validateUpload(in); err != nil {
		return nil, domain.QualityReport{}, err
	}

	images, report, err := uc.processor.Process(ctx, in.Data, in.Filename, in.MimeType)
	if err != nil {
		return nil, domain.QualityReport{}, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		Category: strings.TrimSpace(in.Category),
		Status:   domain.StatusProcessing,
		Version:  1,
		Images:   *images,
		Description: domain.Description{
			Edited: strings.TrimSpace(in.Description),
			Final:  placeholderDescription,
		},
		Keywords: domain.KeywordSets{
			Primary:  []string{},
			Trending: []string{},
			Seasonal: []string{},
			SEO:      []string{},
		},
		AIAnalysis: domain.AIAnalysis{
			QualityScore:     report.Quality.Score,
			VisualAppeal:     report.Quality.VisualAppeal,
			DetectedFeatures: []string{},
		},
		Metadata: domain.Metadata{
			LastUpdated: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if product.Name == "" {
		product.Name = "Sản phẩm mới"
	}

	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, domain.QualityReport{}, fmt.Errorf("create product record: %w", err)
	}

	// Fire-and-forget: a missed notification must not fail the upload.
	if err := uc.notifier.Notify(ctx, domain.EventProductProcessing, map[string]any{
		"productId": product.ID,
		"status":    string(product.Status),
	}); err != nil {
		slog.Warn("webhook_notify_failed", "event", "product_processing", "product_id", product.ID, "error", err)
	}

	// A failed publish is surfaced: the record would sit in processing forever.
	if err := uc.queue.PublishEnrichRequested(ctx, product.ID); err != nil {
		return nil, domain.QualityReport{}, fmt.Errorf("publish enrichment request: %w", err)
	}

	return product, report, nil
}

func validateUpload(in ports.UploadInput) error {
	if len(in.Data) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("empty image payload"))
	}
	if strings.TrimSpace(in.Filename) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("missing filename"))
	}
	return nil
}
