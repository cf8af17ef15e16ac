package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
)

type batchRepoFake struct {
	repoFake
	missing map[string]bool
}

func (f *batchRepoFake) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if f.missing[id] {
		return nil, domain.WrapError(domain.ErrProductNotFound, "get product", errors.New("id "+id))
	}
	product := processingProduct()
	product.ID = id
	return product, nil
}

func TestTriggerBatchRejectsOversizedListBeforeSideEffects(t *testing.T) {
	repo := &batchRepoFake{}
	queue := &queueFake{}
	uc := NewBatchEnrichUseCase(repo, queue, 10)

	ids := make([]string, 11)
	for i := range ids {
		ids[i] = fmt.Sprintf("p-%d", i)
	}

	_, err := uc.TriggerBatch(context.Background(), ids)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(repo.processingIDs) != 0 || len(queue.published) != 0 {
		t.Fatal("an oversized batch must be rejected before any product is touched")
	}
}

func TestTriggerBatchRejectsEmptyList(t *testing.T) {
	uc := NewBatchEnrichUseCase(&batchRepoFake{}, &queueFake{}, 10)
	if _, err := uc.TriggerBatch(context.Background(), nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestTriggerBatchReportsPerProductOutcome(t *testing.T) {
	repo := &batchRepoFake{missing: map[string]bool{"p-2": true}}
	queue := &queueFake{}
	uc := NewBatchEnrichUseCase(repo, queue, 10)

	results, err := uc.TriggerBatch(context.Background(), []string{"p-1", "p-2", "p-3"})
	if err != nil {
		t.Fatalf("trigger batch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected one result per id, got %d", len(results))
	}
	if results[0].Status != string(domain.StatusProcessing) || results[2].Status != string(domain.StatusProcessing) {
		t.Fatalf("unexpected statuses: %+v", results)
	}
	if results[1].Status != "failed" || results[1].Error == "" {
		t.Fatalf("missing product must fail in its slot: %+v", results[1])
	}
	if len(queue.published) != 2 {
		t.Fatalf("expected 2 publishes, got %v", queue.published)
	}
	if len(repo.processingIDs) != 2 {
		t.Fatalf("expected 2 records marked processing, got %v", repo.processingIDs)
	}
}
