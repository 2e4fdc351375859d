package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/internal/variant/dto"
	"go.uber.org/zap"
)

// Consolidate merges duplicate records under the location lease, so it never
// interleaves with a commit.
func (uc *variantUseCase) Consolidate(ctx context.Context, productID, locationID string) (*dto.ConsolidationReport, error) {
	if err := uc.ensureLocation(ctx, productID, locationID); err != nil {
		return nil, err
	}
	release, err := uc.acquireLease(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	defer release()

	return uc.consolidate(ctx, productID, locationID)
}

// consolidate folds every group of records sharing a key into the oldest
// one. The caller holds the lease. A group that fails to merge is logged and
// left for the next pass; the store sums the rows it locks, so a stale read
// here never loses units.
func (uc *variantUseCase) consolidate(ctx context.Context, productID, locationID string) (*dto.ConsolidationReport, error) {
	records, err := uc.repo.ListByLocation(ctx, productID, locationID)
	if err != nil {
		return nil, fmt.Errorf("list variant records: %w", err)
	}

	var order []model.VariantKey
	groups := map[model.VariantKey][]model.VariantRecord{}
	for _, rec := range records {
		key := rec.Key()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}

	report := &dto.ConsolidationReport{Groups: len(order)}
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}

		primary := group[0]
		duplicateIDs := make([]string, 0, len(group)-1)
		for _, rec := range group[1:] {
			duplicateIDs = append(duplicateIDs, rec.ID)
		}

		if _, err := uc.repo.MergeDuplicates(ctx, primary.ID, duplicateIDs); err != nil {
			uc.logger.Error("failed to merge duplicate variant records",
				zap.String("product_id", productID),
				zap.String("location_id", locationID),
				zap.String("variant", key.Name),
				zap.Int("rows", len(group)),
				zap.Error(err),
			)
			report.Failed++
			continue
		}
		report.Merged++
		report.RowsDeleted += len(duplicateIDs)
	}

	if report.Merged > 0 {
		uc.logger.Info("consolidated variant records",
			zap.String("product_id", productID),
			zap.String("location_id", locationID),
			zap.Int("merged", report.Merged),
			zap.Int("rows_deleted", report.RowsDeleted),
		)
	}
	return report, nil
}
