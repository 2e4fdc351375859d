package allocation

import (
	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/internal/variant"
	"github.com/fekuna/omnipos-variant-service/internal/variant/dto"
)

// MissingImages lists the variants that would enter stock without a
// representative photo. A delta with quantity > 0 is covered when its catalog
// attribute carries an image or the session staged one for the same kind and
// name. Variants absent from the catalog are reported with just kind and name.
func MissingImages(deltas []dto.PendingDelta, catalog []model.VariantAttribute, sessionImages []model.VariantKey) []model.VariantAttribute {
	staged := make(map[model.VariantKey]bool, len(sessionImages))
	for _, key := range sessionImages {
		staged[key.Normalize()] = true
	}

	byKey := make(map[model.VariantKey]model.VariantAttribute, len(catalog))
	for _, attr := range catalog {
		byKey[model.VariantKey{Kind: attr.Kind, Name: attr.Name}] = attr
	}

	missing := []model.VariantAttribute{}
	for _, d := range deltas {
		if d.Quantity <= 0 || staged[d.Key().Normalize()] {
			continue
		}
		attr, ok := byKey[d.Key()]
		if ok && attr.HasImage() {
			continue
		}
		if !ok {
			attr = model.VariantAttribute{Name: d.Name, Kind: d.Kind}
		}
		missing = append(missing, attr)
	}
	return missing
}

// Check returns nil when the deltas may be committed against state, and a
// *variant.ValidationError otherwise. missing is the output of MissingImages.
func Check(deltas []dto.PendingDelta, state dto.AllocationState, missing []model.VariantAttribute) error {
	for _, d := range deltas {
		if d.Quantity < 0 {
			return &variant.ValidationError{Reason: variant.ErrNegativeQuantity, Detail: d.Name}
		}
	}

	total := PendingTotal(deltas)
	if total == 0 {
		return &variant.ValidationError{Reason: variant.ErrNothingToAssign}
	}
	if total > state.TotalUnspecified {
		return &variant.ValidationError{
			Reason:    variant.ErrExceedsRemaining,
			Requested: total,
			Available: state.TotalUnspecified,
		}
	}
	if len(missing) > 0 {
		return &variant.ValidationError{
			Reason:    variant.ErrMissingImages,
			Missing:   missing,
			Requested: total,
			Available: state.TotalUnspecified,
		}
	}
	return nil
}

func CanCommit(deltas []dto.PendingDelta, state dto.AllocationState, missing []model.VariantAttribute) bool {
	return Check(deltas, state, missing) == nil
}
