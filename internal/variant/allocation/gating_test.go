package allocation

import (
	"errors"
	"math"
	"testing"

	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/internal/variant"
	"github.com/fekuna/omnipos-variant-service/internal/variant/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func color(name string, qty int) dto.PendingDelta {
	return dto.PendingDelta{Kind: model.VariantKindColor, Name: name, Quantity: qty}
}

func TestMissingImages(t *testing.T) {
	catalog := []model.VariantAttribute{
		{Name: "أحمر", Kind: model.VariantKindColor, Image: strPtr("https://img/red.png")},
		{Name: "أزرق", Kind: model.VariantKindColor, Image: strPtr("  ")},
		{Name: "أخضر", Kind: model.VariantKindColor},
	}
	deltas := []dto.PendingDelta{
		color("أحمر", 1),
		color("أزرق", 1),
		color("أخضر", 2),
		color("أسود", 0),
		color("أصفر", 2),
	}

	missing := MissingImages(deltas, catalog, []model.VariantKey{{Name: " أخضر "}})

	require.Len(t, missing, 2)
	assert.Equal(t, "أزرق", missing[0].Name)
	assert.Equal(t, "أصفر", missing[1].Name)
	assert.Equal(t, model.VariantKindColor, missing[1].Kind)
}

func TestCheckScenarioBExceedsRemaining(t *testing.T) {
	state := dto.AllocationState{InventoryQuantity: 20, SpecifiedQuantity: 17, TotalUnspecified: 3}
	deltas := []dto.PendingDelta{color("أزرق", 4)}

	err := Check(deltas, state, nil)

	var vErr *variant.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.ErrorIs(t, err, variant.ErrExceedsRemaining)
	assert.Equal(t, 4, vErr.Requested)
	assert.Equal(t, 3, vErr.Available)
	assert.False(t, CanCommit(deltas, state, nil))
}

func TestCheckScenarioDMissingImage(t *testing.T) {
	state := dto.AllocationState{InventoryQuantity: 20, TotalUnspecified: 20}
	deltas := []dto.PendingDelta{color("أصفر", 2)}
	missing := MissingImages(deltas, nil, nil)

	require.Len(t, missing, 1)
	assert.Equal(t, "أصفر", missing[0].Name)
	assert.ErrorIs(t, Check(deltas, state, missing), variant.ErrMissingImages)
	assert.False(t, CanCommit(deltas, state, missing))
}

func TestCheckNothingToAssign(t *testing.T) {
	state := dto.AllocationState{TotalUnspecified: 5}

	assert.ErrorIs(t, Check(nil, state, nil), variant.ErrNothingToAssign)
	assert.ErrorIs(t, Check([]dto.PendingDelta{color("أحمر", 0)}, state, nil), variant.ErrNothingToAssign)
}

func TestCheckRejectsNegative(t *testing.T) {
	state := dto.AllocationState{TotalUnspecified: 5}
	deltas := []dto.PendingDelta{color("أحمر", 3), color("أزرق", -1)}

	assert.ErrorIs(t, Check(deltas, state, nil), variant.ErrNegativeQuantity)
}

func TestCheckAllowsExactRemaining(t *testing.T) {
	state := dto.AllocationState{TotalUnspecified: 5}
	deltas := []dto.PendingDelta{color("أحمر", 3), color("أزرق", 2)}

	assert.NoError(t, Check(deltas, state, nil))
	assert.True(t, CanCommit(deltas, state, []model.VariantAttribute{}))
}

func TestMissingImagesMatchesKind(t *testing.T) {
	deltas := []dto.PendingDelta{
		color("دائرة", 1),
		{Kind: model.VariantKindShape, Name: "دائرة", Quantity: 1},
	}

	missing := MissingImages(deltas, nil, []model.VariantKey{{Kind: model.VariantKindShape, Name: "دائرة"}})

	require.Len(t, missing, 1)
	assert.Equal(t, model.VariantKindColor, missing[0].Kind)
}

func TestCheckRejectsOverflowingTotal(t *testing.T) {
	state := dto.AllocationState{InventoryQuantity: 20, TotalUnspecified: 20}
	huge := math.MaxInt/2 + 1
	deltas := []dto.PendingDelta{color("أحمر", huge), color("أزرق", huge)}

	assert.Equal(t, math.MaxInt, PendingTotal(deltas))
	assert.ErrorIs(t, Check(deltas, state, nil), variant.ErrExceedsRemaining)
	assert.False(t, CanCommit(deltas, state, nil))
	assert.Equal(t, 0, InputCeiling(state, deltas, model.VariantKey{Kind: model.VariantKindColor, Name: "أخضر"}))
}
