package usecase

import (
	"context"

	"github.com/fekuna/omnipos-variant-service/internal/inventory"
	"github.com/fekuna/omnipos-variant-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/pkg/logger"
)

const maxPageSize = 100

type inventoryUseCase struct {
	repo   inventory.Repository
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		logger: log,
	}
}

// GetProductInventory returns a zero-quantity record when the product has
// never been stocked at the location.
func (uc *inventoryUseCase) GetProductInventory(ctx context.Context, productID, locationID string) (*model.InventoryRecord, error) {
	rec, err := uc.repo.GetByProductLocation(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &model.InventoryRecord{
			ProductID:  productID,
			LocationID: locationID,
		}, nil
	}
	return rec, nil
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context, locationID string, page, pageSize int) ([]model.InventoryRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return uc.repo.FindLowStock(ctx, &dto.LowStockFilters{
		LocationID: locationID,
		Page:       page,
		PageSize:   pageSize,
	})
}
