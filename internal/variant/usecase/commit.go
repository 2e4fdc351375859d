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
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const EventVariantsCommitted = "VariantsCommitted"

// Commit applies the pending deltas under the location lease. Refusals
// (validation, stale state, busy lease) are returned as errors before
// anything is written. Once writing starts every variant is its own unit of
// work and failures are reported in the result.
func (uc *variantUseCase) Commit(ctx context.Context, input *dto.CommitInput) (*dto.CommitResult, error) {
	if err := uc.ensureLocation(ctx, input.ProductID, input.LocationID); err != nil {
		return nil, err
	}
	deltas, err := allocation.NormalizeDeltas(input.Deltas, uc.cfg.PlaceholderName)
	if err != nil {
		return nil, err
	}

	release, err := uc.acquireLease(ctx, input.ProductID, input.LocationID)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := uc.consolidate(ctx, input.ProductID, input.LocationID); err != nil {
		return nil, err
	}
	state, records, err := uc.loadState(ctx, input.ProductID, input.LocationID)
	if err != nil {
		return nil, err
	}

	pending := allocation.PendingTotal(deltas)
	if exp := input.ExpectedTotalUnspecified; exp != nil && state.TotalUnspecified < *exp && pending > state.TotalUnspecified {
		return nil, &variant.ValidationError{
			Reason:    variant.ErrStaleAllocation,
			Requested: pending,
			Available: state.TotalUnspecified,
		}
	}

	catalog, err := uc.catalog.ListByProduct(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("list variant attributes: %w", err)
	}
	images := stagedByKey(input.Images)
	staged := make([]model.VariantKey, 0, len(images))
	for key := range images {
		staged = append(staged, key)
	}
	if err := allocation.Check(deltas, state, allocation.MissingImages(deltas, catalog, staged)); err != nil {
		return nil, err
	}

	result := &dto.CommitResult{
		Succeeded: []dto.VariantOutcome{},
		Failed:    []dto.VariantOutcome{},
	}
	for _, d := range deltas {
		outcome := uc.applyDelta(ctx, input.ProductID, input.LocationID, d, images[d.Key()])
		if outcome.Error != "" {
			result.Failed = append(result.Failed, outcome)
			continue
		}
		result.Succeeded = append(result.Succeeded, outcome)
	}

	result.PlaceholderShortfall = uc.drawDownPlaceholder(ctx, records, result.SucceededTotal()-state.UnassignedQuantity)
	if result.PlaceholderShortfall > 0 {
		uc.logger.Error("placeholder stock not fully drawn down",
			zap.String("product_id", input.ProductID),
			zap.String("location_id", input.LocationID),
			zap.Int("shortfall", result.PlaceholderShortfall),
		)
	}

	fresh, _, err := uc.loadState(ctx, input.ProductID, input.LocationID)
	if err != nil {
		uc.logger.Error("failed to reload allocation state after commit",
			zap.String("product_id", input.ProductID),
			zap.String("location_id", input.LocationID),
			zap.Error(err),
		)
		result.State = state
		result.StateStale = true
	} else {
		result.State = fresh
	}

	uc.logger.Info("variants committed",
		zap.String("product_id", input.ProductID),
		zap.String("location_id", input.LocationID),
		zap.String("staff_id", input.StaffID),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)),
	)

	if len(result.Succeeded) > 0 {
		uc.publish(ctx, input, result)
	}
	return result, nil
}

// applyDelta uploads the staged image if needed, then adds the quantity to
// the canonical record or creates it.
func (uc *variantUseCase) applyDelta(ctx context.Context, productID, locationID string, d dto.PendingDelta, img *dto.StagedImage) dto.VariantOutcome {
	outcome := dto.VariantOutcome{Kind: d.Kind, Name: d.Name, Quantity: d.Quantity}
	fields := []zap.Field{
		zap.String("product_id", productID),
		zap.String("location_id", locationID),
		zap.String("variant", d.Name),
	}

	if img != nil {
		url, err := uc.uploadImage(ctx, productID, img)
		if err != nil {
			uc.logger.Error("failed to upload variant image", append(fields, zap.Error(err))...)
			outcome.Stage = dto.StageUpload
			outcome.Error = err.Error()
			return outcome
		}
		outcome.ImageURL = url
	}

	fail := func(err error) dto.VariantOutcome {
		uc.logger.Error("failed to store variant record", append(fields, zap.Error(err))...)
		outcome.Stage = dto.StageStore
		outcome.Error = err.Error()
		return outcome
	}

	existing, err := uc.repo.FindCanonical(ctx, productID, locationID, d.Key())
	if err != nil {
		return fail(err)
	}

	if existing != nil {
		value := model.WithImage(existing.Value(), outcome.ImageURL)
		newQuantity := allocation.AddCapped(existing.Quantity, d.Quantity)
		if err := uc.repo.UpdateQuantityAndValue(ctx, existing.ID, newQuantity, model.EncodeVariantValue(value)); err != nil {
			return fail(err)
		}
		outcome.NewQuantity = newQuantity
		return outcome
	}

	barcode := d.Barcode
	if barcode == "" {
		barcode = newBarcode()
	}
	now := time.Now()
	rec := &model.VariantRecord{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ProductID:    productID,
		LocationID:   locationID,
		Kind:         d.Kind,
		Name:         d.Name,
		Quantity:     d.Quantity,
		EncodedValue: model.EncodeVariantValue(model.WithImage(model.PlainBarcode{Code: barcode}, outcome.ImageURL)),
	}
	if err := uc.repo.Create(ctx, rec); err != nil {
		return fail(err)
	}
	outcome.NewQuantity = d.Quantity
	return outcome
}

func (uc *variantUseCase) uploadImage(ctx context.Context, productID string, img *dto.StagedImage) (string, error) {
	if img.UploadedURL != "" {
		return img.UploadedURL, nil
	}
	if uc.blobs == nil {
		return "", errors.New("blob store is not configured")
	}
	obj, err := uc.blobs.Upload(ctx, blob.File{
		Dir:         fmt.Sprintf("products/%s/variants/%s", productID, img.VariantName),
		Name:        img.FileName,
		ContentType: img.ContentType,
		Data:        img.Data,
	}, uc.cfg.Bucket)
	if err != nil {
		return "", err
	}
	return obj.PublicURL, nil
}

// drawDownPlaceholder removes excess units from placeholder records, oldest
// first, once more was allocated than was unassigned. Without it the
// placeholder stock would be counted twice. It returns the units it could not
// remove.
func (uc *variantUseCase) drawDownPlaceholder(ctx context.Context, records []model.VariantRecord, excess int) int {
	for _, rec := range records {
		if excess <= 0 {
			return 0
		}
		if !allocation.IsPlaceholder(rec.Name, uc.cfg.PlaceholderName) || rec.Quantity <= 0 {
			continue
		}
		take := rec.Quantity
		if take > excess {
			take = excess
		}
		if err := uc.repo.UpdateQuantityAndValue(ctx, rec.ID, rec.Quantity-take, rec.EncodedValue); err != nil {
			uc.logger.Error("failed to draw down placeholder stock",
				zap.String("record_id", rec.ID),
				zap.Int("quantity", take),
				zap.Error(err),
			)
			continue
		}
		excess -= take
	}
	if excess < 0 {
		return 0
	}
	return excess
}

func (uc *variantUseCase) publish(ctx context.Context, input *dto.CommitInput, result *dto.CommitResult) {
	if uc.publisher == nil {
		return
	}
	event := &dto.CommittedEvent{
		EventID:    uuid.New().String(),
		EventType:  EventVariantsCommitted,
		ProductID:  input.ProductID,
		LocationID: input.LocationID,
		StaffID:    input.StaffID,
		Variants:   result.Succeeded,
		State:      result.State,
		Timestamp:  time.Now().UTC(),
	}
	if err := uc.publisher.PublishCommitted(ctx, event); err != nil {
		uc.logger.Error("failed to publish variants committed event",
			zap.String("product_id", input.ProductID),
			zap.String("location_id", input.LocationID),
			zap.Error(err),
		)
	}
}

func stagedByKey(images []dto.StagedImage) map[model.VariantKey]*dto.StagedImage {
	out := make(map[model.VariantKey]*dto.StagedImage, len(images))
	for i := range images {
		key := images[i].Key()
		if key.Name == "" || (len(images[i].Data) == 0 && images[i].UploadedURL == "") {
			continue
		}
		images[i].Kind, images[i].VariantName = key.Kind, key.Name
		out[key] = &images[i]
	}
	return out
}

// newBarcode generates a 12 character code for records created without one.
func newBarcode() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(id[:12])
}
