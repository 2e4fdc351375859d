package variant

import (
	"context"

	"github.com/fekuna/omnipos-variant-service/internal/model"
)

type Repository interface {
	// ListByLocation returns every record for the pair, oldest first.
	ListByLocation(ctx context.Context, productID, locationID string) ([]model.VariantRecord, error)
	// FindCanonical returns the oldest record for the key, or nil.
	FindCanonical(ctx context.Context, productID, locationID string, key model.VariantKey) (*model.VariantRecord, error)
	Create(ctx context.Context, rec *model.VariantRecord) error
	UpdateQuantityAndValue(ctx context.Context, id string, quantity int, encodedValue string) error
	// MergeDuplicates adds the duplicates' quantity to the primary and deletes
	// them atomically, summing the rows as they are at merge time. It returns
	// the merged quantity, or ErrRecordsChanged when a row no longer exists.
	MergeDuplicates(ctx context.Context, primaryID string, duplicateIDs []string) (int, error)
}
