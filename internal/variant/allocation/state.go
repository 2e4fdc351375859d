// Package allocation holds the pure rules of variant allocation: deriving
// the allocatable quantity of a location, bounding user input and deciding
// whether a set of pending deltas may be committed. Nothing here performs
// I/O.
package allocation

import (
	"math"
	"sort"
	"strings"

	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/internal/variant"
	"github.com/fekuna/omnipos-variant-service/internal/variant/dto"
)

// ComputeState derives the allocation figures for one (product, location).
// A nil inventory record counts as zero stock. Records named placeholderName
// count as unspecified stock, every other record as specified.
func ComputeState(inv *model.InventoryRecord, records []model.VariantRecord, placeholderName string) dto.AllocationState {
	var state dto.AllocationState
	if inv != nil {
		state.InventoryQuantity = inv.Quantity
	}

	type agg struct {
		quantity int
		image    string
	}
	named := map[model.VariantKey]*agg{}

	for _, rec := range records {
		if IsPlaceholder(rec.Name, placeholderName) {
			state.PlaceholderQuantity = AddCapped(state.PlaceholderQuantity, rec.Quantity)
			continue
		}
		state.SpecifiedQuantity = AddCapped(state.SpecifiedQuantity, rec.Quantity)

		a, ok := named[rec.Key()]
		if !ok {
			a = &agg{}
			named[rec.Key()] = a
		}
		a.quantity = AddCapped(a.quantity, rec.Quantity)
		if a.image == "" {
			a.image = rec.Value().ImageURL()
		}
	}

	state.UnassignedQuantity = state.InventoryQuantity - AddCapped(state.SpecifiedQuantity, state.PlaceholderQuantity)
	if state.UnassignedQuantity < 0 {
		state.UnassignedQuantity = 0
	}
	state.TotalUnspecified = AddCapped(state.PlaceholderQuantity, state.UnassignedQuantity)

	state.Variants = make([]dto.VariantQuantity, 0, len(named))
	for key, a := range named {
		state.Variants = append(state.Variants, dto.VariantQuantity{
			Kind:     key.Kind,
			Name:     key.Name,
			Quantity: a.quantity,
			ImageURL: a.image,
		})
	}
	sort.Slice(state.Variants, func(i, j int) bool {
		if state.Variants[i].Kind != state.Variants[j].Kind {
			return state.Variants[i].Kind < state.Variants[j].Kind
		}
		return state.Variants[i].Name < state.Variants[j].Name
	})

	return state
}

func IsPlaceholder(name, placeholderName string) bool {
	return placeholderName != "" && strings.TrimSpace(name) == placeholderName
}

// AddCapped adds two non-negative quantities, saturating at math.MaxInt
// instead of wrapping.
func AddCapped(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// PendingTotal sums the positive deltas. The sum saturates, so a total that
// cannot be represented still compares above any real remaining quantity.
func PendingTotal(deltas []dto.PendingDelta) int {
	total := 0
	for _, d := range deltas {
		if d.Quantity > 0 {
			total = AddCapped(total, d.Quantity)
		}
	}
	return total
}

// Remaining is what is still allocatable after the pending deltas.
func Remaining(state dto.AllocationState, deltas []dto.PendingDelta) int {
	return state.TotalUnspecified - PendingTotal(deltas)
}

// InputCeiling bounds the quantity input for one variant: the remaining
// quantity plus whatever that variant already holds in the session, so a
// user can always lower and re-raise their own delta.
func InputCeiling(state dto.AllocationState, deltas []dto.PendingDelta, key model.VariantKey) int {
	own := 0
	for _, d := range deltas {
		if d.Key() == key && d.Quantity > 0 {
			own = AddCapped(own, d.Quantity)
		}
	}
	ceiling := Remaining(state, deltas) + own
	if ceiling < 0 {
		return 0
	}
	return ceiling
}

// NormalizeDeltas trims names, defaults the kind to color, folds repeated
// keys together and drops zero quantities. Negative quantities, blank names,
// unknown kinds and the placeholder name are rejected.
func NormalizeDeltas(deltas []dto.PendingDelta, placeholderName string) ([]dto.PendingDelta, error) {
	index := map[model.VariantKey]int{}
	out := make([]dto.PendingDelta, 0, len(deltas))

	for _, d := range deltas {
		d.Name = strings.TrimSpace(d.Name)
		d.Barcode = strings.TrimSpace(d.Barcode)
		if d.Kind == "" {
			d.Kind = model.VariantKindColor
		}

		switch {
		case d.Quantity < 0:
			return nil, &variant.ValidationError{Reason: variant.ErrNegativeQuantity, Detail: d.Name}
		case d.Name == "":
			return nil, &variant.ValidationError{Reason: variant.ErrInvalidDelta, Detail: "variant name is required"}
		case !d.Kind.Valid():
			return nil, &variant.ValidationError{Reason: variant.ErrInvalidDelta, Detail: "unknown variant kind " + string(d.Kind)}
		case IsPlaceholder(d.Name, placeholderName):
			return nil, &variant.ValidationError{Reason: variant.ErrInvalidDelta, Detail: "cannot allocate to the unspecified variant"}
		case d.Quantity == 0:
			continue
		}

		if i, ok := index[d.Key()]; ok {
			out[i].Quantity = AddCapped(out[i].Quantity, d.Quantity)
			if out[i].Barcode == "" {
				out[i].Barcode = d.Barcode
			}
			continue
		}
		index[d.Key()] = len(out)
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
