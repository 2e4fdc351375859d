package catalog

import (
	"context"

	"github.com/fekuna/omnipos-variant-service/internal/model"
)

// Repository is the read-only view of a product's variant attributes.
type Repository interface {
	ListByProduct(ctx context.Context, productID string) ([]model.VariantAttribute, error)
}
