package model

import "time"

// InventoryRecord is the total stock of one product at one location.
type InventoryRecord struct {
	ID         string    `db:"id" json:"id"`
	ProductID  string    `db:"product_id" json:"product_id"`
	LocationID string    `db:"location_id" json:"location_id"`
	Quantity   int       `db:"quantity" json:"quantity"`
	MinStock   int       `db:"min_stock" json:"min_stock"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (r *InventoryRecord) IsLowStock() bool {
	return r.MinStock > 0 && r.Quantity <= r.MinStock
}
