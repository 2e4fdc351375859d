package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (*model.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Location), args.Error(1)
}

func (m *mockRepo) FindAll(ctx context.Context) ([]model.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Location), args.Error(1)
}

// mapCache stores JSON blobs in memory.
type mapCache struct {
	data    map[string][]byte
	readErr error
}

func (c *mapCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	if c.readErr != nil {
		return false, c.readErr
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func TestListLocationsCachesResult(t *testing.T) {
	repo := new(mockRepo)
	cache := &mapCache{data: map[string][]byte{}}
	uc := NewLocationUseCase(repo, cache, time.Minute, logger.NewNop())

	locations := []model.Location{
		{BaseModel: model.BaseModel{ID: "b1"}, Name: "Downtown", Kind: model.LocationKindBranch},
		{BaseModel: model.BaseModel{ID: "w1"}, Name: "Main", Kind: model.LocationKindWarehouse},
	}
	repo.On("FindAll", mock.Anything).Return(locations, nil).Once()

	first, err := uc.ListLocations(context.Background())
	require.NoError(t, err)
	second, err := uc.ListLocations(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Downtown", first[0].Name)
	assert.Equal(t, first[1].ID, second[1].ID)
	repo.AssertExpectations(t)
}

func TestListLocationsFallsBackOnCacheError(t *testing.T) {
	repo := new(mockRepo)
	cache := &mapCache{data: map[string][]byte{}, readErr: errors.New("redis down")}
	uc := NewLocationUseCase(repo, cache, time.Minute, logger.NewNop())

	repo.On("FindAll", mock.Anything).Return([]model.Location{{Name: "Main"}}, nil).Twice()

	for i := 0; i < 2; i++ {
		got, err := uc.ListLocations(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	repo.AssertExpectations(t)
}
