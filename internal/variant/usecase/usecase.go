package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-variant-service/internal/blob"
	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/internal/variant"
	"github.com/fekuna/omnipos-variant-service/internal/variant/allocation"
	"github.com/fekuna/omnipos-variant-service/internal/variant/dto"
	"github.com/fekuna/omnipos-variant-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Config struct {
	PlaceholderName string
	Bucket          string
	LockTTL         time.Duration
	LockRetries     int
	LockRetryDelay  time.Duration
}

type variantUseCase struct {
	repo      variant.Repository
	ledger    variant.Ledger
	catalog   variant.AttributeCatalog
	locations variant.LocationDirectory
	blobs     blob.Store
	locker    variant.Locker
	publisher variant.EventPublisher
	cfg       Config
	logger    logger.ZapLogger
}

// NewVariantUseCase wires the engine. locations, locker and publisher may be
// nil, which skips the location check, the commit lease and event
// publication respectively.
func NewVariantUseCase(
	repo variant.Repository,
	ledger variant.Ledger,
	catalog variant.AttributeCatalog,
	locations variant.LocationDirectory,
	blobs blob.Store,
	locker variant.Locker,
	publisher variant.EventPublisher,
	cfg Config,
	log logger.ZapLogger,
) variant.UseCase {
	if cfg.LockRetries < 1 {
		cfg.LockRetries = 1
	}
	return &variantUseCase{
		repo:      repo,
		ledger:    ledger,
		catalog:   catalog,
		locations: locations,
		blobs:     blobs,
		locker:    locker,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
	}
}

// GetState starts a session: the location is consolidated before its state
// is read. While a commit holds the lease the merge is skipped; the state
// still aggregates duplicate rows.
func (uc *variantUseCase) GetState(ctx context.Context, productID, locationID string) (*dto.AllocationState, error) {
	if err := uc.ensureLocation(ctx, productID, locationID); err != nil {
		return nil, err
	}
	release, err := uc.acquireLease(ctx, productID, locationID)
	switch {
	case errors.Is(err, variant.ErrLocationBusy):
		uc.logger.Info("skipping consolidation, location lease held",
			zap.String("product_id", productID),
			zap.String("location_id", locationID),
		)
	case err != nil:
		return nil, err
	default:
		_, err = uc.consolidate(ctx, productID, locationID)
		release()
		if err != nil {
			return nil, err
		}
	}

	state, _, err := uc.loadState(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Validate answers whether the deltas could be committed right now. A
// refusal is reported in the result, not as an error.
func (uc *variantUseCase) Validate(ctx context.Context, input *dto.ValidateInput) (*dto.ValidationResult, error) {
	if err := uc.ensureLocation(ctx, input.ProductID, input.LocationID); err != nil {
		return nil, err
	}
	deltas, err := allocation.NormalizeDeltas(input.Deltas, uc.cfg.PlaceholderName)
	if err != nil {
		return nil, err
	}

	state, _, err := uc.loadState(ctx, input.ProductID, input.LocationID)
	if err != nil {
		return nil, err
	}
	catalog, err := uc.catalog.ListByProduct(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("list variant attributes: %w", err)
	}

	missing := allocation.MissingImages(deltas, catalog, input.SessionImages)
	result := &dto.ValidationResult{
		CanCommit:     true,
		Requested:     allocation.PendingTotal(deltas),
		Available:     state.TotalUnspecified,
		MissingImages: missing,
		State:         state,
	}

	if err := allocation.Check(deltas, state, missing); err != nil {
		var vErr *variant.ValidationError
		if !errors.As(err, &vErr) {
			return nil, err
		}
		result.CanCommit = false
		result.Reason = vErr.Reason.Error()
	}
	return result, nil
}

func (uc *variantUseCase) ensureLocation(ctx context.Context, productID, locationID string) error {
	if strings.TrimSpace(productID) == "" || strings.TrimSpace(locationID) == "" {
		return &variant.ValidationError{Reason: variant.ErrInvalidDelta, Detail: "product and location are required"}
	}
	if uc.locations == nil {
		return nil
	}
	loc, err := uc.locations.GetLocation(ctx, locationID)
	if err != nil {
		return fmt.Errorf("get location: %w", err)
	}
	if loc == nil {
		return variant.ErrLocationNotFound
	}
	return nil
}

func (uc *variantUseCase) loadState(ctx context.Context, productID, locationID string) (dto.AllocationState, []model.VariantRecord, error) {
	inv, err := uc.ledger.GetProductInventory(ctx, productID, locationID)
	if err != nil {
		return dto.AllocationState{}, nil, fmt.Errorf("get inventory: %w", err)
	}
	records, err := uc.repo.ListByLocation(ctx, productID, locationID)
	if err != nil {
		return dto.AllocationState{}, nil, fmt.Errorf("list variant records: %w", err)
	}
	return allocation.ComputeState(inv, records, uc.cfg.PlaceholderName), records, nil
}

// acquireLease takes the per-(product, location) commit lease. The returned
// func releases it.
func (uc *variantUseCase) acquireLease(ctx context.Context, productID, locationID string) (func(), error) {
	if uc.locker == nil {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("lock:variants:%s:%s", productID, locationID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < uc.cfg.LockRetries; i++ {
		ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, uc.cfg.LockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.String("key", lockKey), zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		if i < uc.cfg.LockRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(uc.cfg.LockRetryDelay):
			}
		}
	}
	if !acquired {
		uc.logger.Warn("location lease busy",
			zap.String("product_id", productID),
			zap.String("location_id", locationID),
		)
		return nil, variant.ErrLocationBusy
	}

	return func() {
		if err := uc.locker.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
			uc.logger.Error("failed to release lock", zap.String("key", lockKey), zap.Error(err))
		}
	}, nil
}
