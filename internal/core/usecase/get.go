package usecase

import (
	"context"
	"fmt"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
	"github.com/chotuoi/listing-pipeline/internal/core/ports"
)

// GetProductUseCase is the read model behind the status-polling endpoint.
type GetProductUseCase struct {
	repo ports.ProductRepository
}

func NewGetProductUseCase(repo ports.ProductRepository) *GetProductUseCase {
	return &GetProductUseCase{repo: repo}
}

func (uc *GetProductUseCase) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch product by id: %w", err)
	}
	return product, nil
}
