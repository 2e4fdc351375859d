package repository

import (
	"context"
	"database/sql"
	"errors"
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

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Location, error) {
	var loc model.Location
	query := `SELECT id, name, kind, created_at, updated_at FROM locations WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &loc, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find location %s: %w", id, err)
	}
	return &loc, nil
}

// FindAll lists branches before warehouses, each group by name.
func (r *PGRepository) FindAll(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	query := `
        SELECT id, name, kind, created_at, updated_at
        FROM locations
        ORDER BY CASE kind WHEN 'branch' THEN 0 ELSE 1 END, name
    `
	if err := r.DB.SelectContext(ctx, &locations, query); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}
