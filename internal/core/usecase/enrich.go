package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
	"github.com/chotuoi/listing-pipeline/internal/core/ports"
)

const DefaultStageTimeout = 30 * time.Second

// EnrichProductUseCase runs the three AI stages for one product: image
// analysis, content generation, pricing. Stages run strictly in order; each
// stage output is persisted before the next stage starts, so a mid-run crash
// keeps completed stage results.
type EnrichProductUseCase struct {
	repo         ports.ProductRepository
	storage      ports.ObjectStorage
	analyzer     ports.ImageAnalyzer
	generator    ports.ContentGenerator
	pricer       ports.PriceSuggester
	notifier     ports.AutomationClient
	model        string
	stageTimeout time.Duration
}

func NewEnrichProductUseCase(
	repo ports.ProductRepository,
	storage ports.ObjectStorage,
	analyzer ports.ImageAnalyzer,
	generator ports.ContentGenerator,
	pricer ports.PriceSuggester,
	notifier ports.AutomationClient,
	model string,
	stageTimeout time.Duration,
) *EnrichProductUseCase {
	if stageTimeout <= 0 {
		stageTimeout = DefaultStageTimeout
	}
	return &EnrichProductUseCase{
		repo:         repo,
		storage:      storage,
		analyzer:     analyzer,
		generator:    generator,
		pricer:       pricer,
		notifier:     notifier,
		model:        model,
		stageTimeout: stageTimeout,
	}
}

func (uc *EnrichProductUseCase) EnrichByID(ctx context.Context, productID string) error {
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("fetch product by id: %w", err)
	}

	// Redelivered or replayed messages arrive for records that already reached
	// a terminal state. Skipping keeps consumption idempotent.
	if product.Status != domain.StatusProcessing {
		slog.Info("enrich_skipped", "product_id", productID, "status", string(product.Status))
		return nil
	}

	start := time.Now()
	if err := uc.runPipeline(ctx, product, start); err != nil {
		if domain.IsKind(err, domain.ErrVersionConflict) {
			// Another writer owns the record now; failing it here would
			// clobber their update.
			slog.Warn("enrich_version_conflict", "product_id", productID, "error", err)
			return err
		}
		if failErr := uc.repo.MarkFailed(ctx, productID, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		uc.notify(ctx, domain.EventProductFailed, map[string]any{
			"productId": productID,
			"status":    string(domain.StatusError),
			"error":     err.Error(),
		})
		return err
	}

	uc.notify(ctx, domain.EventProductCompleted, map[string]any{
		"productId":      productID,
		"status":         string(domain.StatusCompleted),
		"processingTime": time.Since(start).Milliseconds(),
	})
	return nil
}

func (uc *EnrichProductUseCase) runPipeline(ctx context.Context, product *domain.Product, start time.Time) error {
	imageB64, err := uc.loadOriginal(ctx, product)
	if err != nil {
		return err
	}

	analysis, err := uc.analyze(ctx, imageB64, product.Category)
	if err != nil {
		return err
	}
	version, err := uc.repo.SaveImageAnalysis(ctx, product.ID, analysis)
	if err != nil {
		return fmt.Errorf("save image analysis: %w", err)
	}

	content, err := uc.generate(ctx, analysis)
	if err != nil {
		return err
	}
	version, err = uc.repo.SaveGeneratedContent(ctx, product.ID, content, defaultTone)
	if err != nil {
		return fmt.Errorf("save generated content: %w", err)
	}

	pricing, err := uc.price(ctx, analysis)
	if err != nil {
		return err
	}
	version, err = uc.repo.SavePricing(ctx, product.ID, pricing)
	if err != nil {
		return fmt.Errorf("save pricing: %w", err)
	}

	completion := domain.Completion{
		FinalDescription:    content.Description,
		ProcessingTimeMS:    time.Since(start).Milliseconds(),
		TextGenerationModel: uc.model,
		Confidence:          analysis.Confidence,
		QualityScore:        analysis.Quality.Score,
		VisualAppeal:        analysis.Quality.VisualAppeal,
		Freshness:           analysis.Quality.Freshness,
	}
	if err := uc.repo.Complete(ctx, product.ID, version, completion); err != nil {
		return fmt.Errorf("complete product: %w", err)
	}
	return nil
}

const defaultTone = "friendly"

func (uc *EnrichProductUseCase) loadOriginal(ctx context.Context, product *domain.Product) (string, error) {
	key := product.Images.Original.Path
	if key == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "load original image", fmt.Errorf("product %s has no original image", product.ID))
	}
	reader, err := uc.storage.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("open original image: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read original image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (uc *EnrichProductUseCase) analyze(ctx context.Context, imageB64, category string) (domain.ImageAnalysis, error) {
	stageCtx, cancel := context.WithTimeout(ctx, uc.stageTimeout)
	defer cancel()

	analysis, err := uc.analyzer.Analyze(stageCtx, imageB64, category)
	if err != nil {
		return domain.ImageAnalysis{}, fmt.Errorf("image analysis stage: %w", err)
	}
	return analysis, nil
}

func (uc *EnrichProductUseCase) generate(ctx context.Context, analysis domain.ImageAnalysis) (domain.GeneratedContent, error) {
	stageCtx, cancel := context.WithTimeout(ctx, uc.stageTimeout)
	defer cancel()

	content, err := uc.generator.Generate(stageCtx, analysis, domain.GenerationOptions{
		Tone:         defaultTone,
		Length:       "medium",
		IncludeSpecs: true,
	})
	if err != nil {
		return domain.GeneratedContent{}, fmt.Errorf("content generation stage: %w", err)
	}
	return content, nil
}

func (uc *EnrichProductUseCase) price(ctx context.Context, analysis domain.ImageAnalysis) (domain.PriceSuggestion, error) {
	stageCtx, cancel := context.WithTimeout(ctx, uc.stageTimeout)
	defer cancel()

	pricing, err := uc.pricer.Suggest(stageCtx, analysis)
	if err != nil {
		return domain.PriceSuggestion{}, fmt.Errorf("pricing stage: %w", err)
	}
	return pricing, nil
}

func (uc *EnrichProductUseCase) notify(ctx context.Context, event string, data map[string]any) {
	if err := uc.notifier.Notify(ctx, event, data); err != nil {
		slog.Warn("webhook_notify_failed", "event", event, "error", err)
	}
}
