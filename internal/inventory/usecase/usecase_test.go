package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-variant-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetByProductLocation(ctx context.Context, productID, locationID string) (*model.InventoryRecord, error) {
	args := m.Called(ctx, productID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InventoryRecord), args.Error(1)
}

func (m *mockRepo) FindLowStock(ctx context.Context, f *dto.LowStockFilters) ([]model.InventoryRecord, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.InventoryRecord), args.Int(1), args.Error(2)
}

func TestGetProductInventoryDefaultsToZero(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByProductLocation", mock.Anything, "p1", "loc1").Return(nil, nil)

	uc := NewInventoryUseCase(repo, logger.NewNop())
	rec, err := uc.GetProductInventory(context.Background(), "p1", "loc1")

	require.NoError(t, err)
	assert.Equal(t, 0, rec.Quantity)
	assert.Equal(t, "loc1", rec.LocationID)
}

func TestGetProductInventoryPropagatesErrors(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByProductLocation", mock.Anything, "p1", "loc1").Return(nil, errors.New("conn reset"))

	uc := NewInventoryUseCase(repo, logger.NewNop())
	_, err := uc.GetProductInventory(context.Background(), "p1", "loc1")

	assert.EqualError(t, err, "conn reset")
}

func TestListLowStockClampsPaging(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindLowStock", mock.Anything, &dto.LowStockFilters{LocationID: "w1", Page: 1, PageSize: 100}).
		Return([]model.InventoryRecord{{ProductID: "p1", Quantity: 2, MinStock: 5}}, 1, nil)

	uc := NewInventoryUseCase(repo, logger.NewNop())
	items, total, err := uc.ListLowStock(context.Background(), "w1", 0, 5000)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.True(t, items[0].IsLowStock())
	repo.AssertExpectations(t)
}
