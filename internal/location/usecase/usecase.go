package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-variant-service/internal/location"
	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/pkg/logger"
	"go.uber.org/zap"
)

const listCacheKey = "locations:list"

// Cache is the subset of the redis client used for the location list.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type locationUseCase struct {
	repo     location.Repository
	cache    Cache
	cacheTTL time.Duration
	logger   logger.ZapLogger
}

func NewLocationUseCase(repo location.Repository, cache Cache, cacheTTL time.Duration, log logger.ZapLogger) location.UseCase {
	return &locationUseCase{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

func (uc *locationUseCase) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	return uc.repo.FindByID(ctx, id)
}

// ListLocations serves from cache when possible. Cache errors fall through to
// the database.
func (uc *locationUseCase) ListLocations(ctx context.Context) ([]model.Location, error) {
	if uc.cache != nil {
		var cached []model.Location
		hit, err := uc.cache.GetJSON(ctx, listCacheKey, &cached)
		if err != nil {
			uc.logger.Warn("location cache read failed", zap.Error(err))
		}
		if hit {
			return cached, nil
		}
	}

	locations, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, listCacheKey, locations, uc.cacheTTL); err != nil {
			uc.logger.Warn("location cache write failed", zap.Error(err))
		}
	}
	return locations, nil
}
