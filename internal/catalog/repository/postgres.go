package repository

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) ListByProduct(ctx context.Context, productID string) ([]model.VariantAttribute, error) {
	var attrs []model.VariantAttribute
	query := `
        SELECT id, product_id, name, kind, color_hex, image, created_at, updated_at
        FROM variant_attributes
        WHERE product_id = $1
        ORDER BY kind, name
    `
	if err := r.DB.SelectContext(ctx, &attrs, query, productID); err != nil {
		return nil, fmt.Errorf("list variant attributes for %s: %w", productID, err)
	}
	return attrs, nil
}
