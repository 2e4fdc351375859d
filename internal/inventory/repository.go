package inventory

import (
	"context"

	"github.com/fekuna/omnipos-variant-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-variant-service/internal/model"
)

// Repository reads the per-(product, location) ledger. Quantities are
// written by stock receipts, never by the variant engine.
type Repository interface {
	GetByProductLocation(ctx context.Context, productID, locationID string) (*model.InventoryRecord, error)
	FindLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]model.InventoryRecord, int, error)
}
