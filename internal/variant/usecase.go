package variant

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/internal/variant/dto"
)

type UseCase interface {
	Consolidate(ctx context.Context, productID, locationID string) (*dto.ConsolidationReport, error)
	GetState(ctx context.Context, productID, locationID string) (*dto.AllocationState, error)
	Validate(ctx context.Context, input *dto.ValidateInput) (*dto.ValidationResult, error)
	Commit(ctx context.Context, input *dto.CommitInput) (*dto.CommitResult, error)
}

// Ledger reads the total stock of a product at a location.
type Ledger interface {
	GetProductInventory(ctx context.Context, productID, locationID string) (*model.InventoryRecord, error)
}

type AttributeCatalog interface {
	ListByProduct(ctx context.Context, productID string) ([]model.VariantAttribute, error)
}

type LocationDirectory interface {
	GetLocation(ctx context.Context, id string) (*model.Location, error)
}

type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type EventPublisher interface {
	PublishCommitted(ctx context.Context, event *dto.CommittedEvent) error
}
