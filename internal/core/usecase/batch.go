package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
	"github.com/chotuoi/listing-pipeline/internal/core/ports"
)

const DefaultBatchMaxProducts = 10

// BatchEnrichUseCase re-enqueues existing products for enrichment. Products
// are handled strictly one at a time; a failing id is reported in its slot and
// the batch moves on.
type BatchEnrichUseCase struct {
	repo        ports.ProductRepository
	queue       ports.EnrichQueue
	maxProducts int
}

func NewBatchEnrichUseCase(repo ports.ProductRepository, queue ports.EnrichQueue, maxProducts int) *BatchEnrichUseCase {
	if maxProducts <= 0 {
		maxProducts = DefaultBatchMaxProducts
	}
	return &BatchEnrichUseCase{
		repo:        repo,
		queue:       queue,
		maxProducts: maxProducts,
	}
}

// TriggerBatch validates the whole request before any side effect: an
// oversized or empty batch is rejected with no product touched.
func (uc *BatchEnrichUseCase) TriggerBatch(ctx context.Context, productIDs []string) ([]ports.BatchResult, error) {
	if len(productIDs) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "batch enrich", errors.New("empty product id list"))
	}
	if len(productIDs) > uc.maxProducts {
		return nil, domain.WrapError(domain.ErrInvalidInput, "batch enrich",
			fmt.Errorf("%d ids exceed the batch limit of %d", len(productIDs), uc.maxProducts))
	}

	results := make([]ports.BatchResult, 0, len(productIDs))
	for _, id := range productIDs {
		if err := uc.triggerOne(ctx, id); err != nil {
			slog.Warn("batch_enrich_item_failed", "product_id", id, "error", err)
			results = append(results, ports.BatchResult{
				ProductID: id,
				Status:    "failed",
				Error:     err.Error(),
			})
			continue
		}
		results = append(results, ports.BatchResult{
			ProductID: id,
			Status:    string(domain.StatusProcessing),
		})
	}
	return results, nil
}

func (uc *BatchEnrichUseCase) triggerOne(ctx context.Context, id string) error {
	if _, err := uc.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.MarkProcessing(ctx, id); err != nil {
		return err
	}
	if err := uc.queue.PublishEnrichRequested(ctx, id); err != nil {
		return fmt.Errorf("publish enrichment request: %w", err)
	}
	return nil
}
