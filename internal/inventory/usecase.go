package inventory

import (
	"context"

	"github.com/fekuna/omnipos-variant-service/internal/model"
)

type UseCase interface {
	GetProductInventory(ctx context.Context, productID, locationID string) (*model.InventoryRecord, error)
	ListLowStock(ctx context.Context, locationID string, page, pageSize int) ([]model.InventoryRecord, int, error)
}
