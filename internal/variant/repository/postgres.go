package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/internal/variant"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const recordColumns = `id, product_id, location_id, kind, name, quantity, value, created_at, updated_at`

func (r *PGRepository) ListByLocation(ctx context.Context, productID, locationID string) ([]model.VariantRecord, error) {
	records := []model.VariantRecord{}
	query := `
        SELECT ` + recordColumns + `
        FROM variant_records
        WHERE product_id = $1 AND location_id = $2
        ORDER BY created_at ASC, id ASC
    `
	if err := r.DB.SelectContext(ctx, &records, query, productID, locationID); err != nil {
		return nil, fmt.Errorf("list variant records %s@%s: %w", productID, locationID, err)
	}
	return records, nil
}

func (r *PGRepository) FindCanonical(ctx context.Context, productID, locationID string, key model.VariantKey) (*model.VariantRecord, error) {
	var rec model.VariantRecord
	query := `
        SELECT ` + recordColumns + `
        FROM variant_records
        WHERE product_id = $1 AND location_id = $2 AND kind = $3 AND name = $4
        ORDER BY created_at ASC, id ASC
        LIMIT 1
    `
	err := r.DB.GetContext(ctx, &rec, query, productID, locationID, key.Kind, key.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find variant record %s: %w", key.Name, err)
	}
	return &rec, nil
}

func (r *PGRepository) Create(ctx context.Context, rec *model.VariantRecord) error {
	query := `
        INSERT INTO variant_records (` + recordColumns + `)
        VALUES (:id, :product_id, :location_id, :kind, :name, :quantity, :value, :created_at, :updated_at)
    `
	if _, err := r.DB.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("insert variant record %s: %w", rec.Name, err)
	}
	return nil
}

func (r *PGRepository) UpdateQuantityAndValue(ctx context.Context, id string, quantity int, encodedValue string) error {
	query := `UPDATE variant_records SET quantity = $1, value = $2, updated_at = $3 WHERE id = $4`
	res, err := r.DB.ExecContext(ctx, query, quantity, encodedValue, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update variant record %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update variant record %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// MergeDuplicates locks the primary and duplicate rows, writes their sum to
// the primary and deletes the duplicates in one transaction. The sum is taken
// from the locked rows, not from the caller's earlier read.
func (r *PGRepository) MergeDuplicates(ctx context.Context, primaryID string, duplicateIDs []string) (int, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	ids := append([]string{primaryID}, duplicateIDs...)
	query, args, err := sqlx.In(`SELECT id, quantity FROM variant_records WHERE id IN (?) FOR UPDATE`, ids)
	if err != nil {
		return 0, err
	}
	var locked []struct {
		ID       string `db:"id"`
		Quantity int    `db:"quantity"`
	}
	if err := tx.SelectContext(ctx, &locked, tx.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to lock variant records: %w", err)
	}
	if len(locked) != len(ids) {
		return 0, fmt.Errorf("merge into %s: %w", primaryID, variant.ErrRecordsChanged)
	}

	total := 0
	for _, row := range locked {
		total += row.Quantity
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE variant_records SET quantity = $1, updated_at = $2 WHERE id = $3`,
		total, time.Now(), primaryID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update primary record: %w", err)
	}

	if len(duplicateIDs) > 0 {
		query, args, err := sqlx.In(`DELETE FROM variant_records WHERE id IN (?)`, duplicateIDs)
		if err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return 0, fmt.Errorf("failed to delete duplicate records: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n != int64(len(duplicateIDs)) {
			return 0, fmt.Errorf("merge into %s: %w", primaryID, variant.ErrRecordsChanged)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}
