package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-variant-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const inventoryColumns = `id, product_id, location_id, quantity, min_stock, updated_at`

func (r *PGRepository) GetByProductLocation(ctx context.Context, productID, locationID string) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE product_id = $1 AND location_id = $2`
	err := r.DB.GetContext(ctx, &rec, query, productID, locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Caller decides the default
		}
		return nil, fmt.Errorf("get inventory %s@%s: %w", productID, locationID, err)
	}
	return &rec, nil
}

func (r *PGRepository) FindLowStock(ctx context.Context, f *dto.LowStockFilters) ([]model.InventoryRecord, int, error) {
	var items []model.InventoryRecord
	var count int

	where := ` WHERE min_stock > 0 AND quantity <= min_stock AND location_id = $1`

	if err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM inventory`+where, f.LocationID); err != nil {
		return nil, 0, fmt.Errorf("count low stock: %w", err)
	}

	query := `SELECT ` + inventoryColumns + ` FROM inventory` + where + ` ORDER BY quantity ASC, updated_at DESC`
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	if err := r.DB.SelectContext(ctx, &items, query, f.LocationID); err != nil {
		return nil, 0, fmt.Errorf("list low stock: %w", err)
	}
	return items, count, nil
}
