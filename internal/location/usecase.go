package location

import (
	"context"

	"github.com/fekuna/omnipos-variant-service/internal/model"
)

type UseCase interface {
	GetLocation(ctx context.Context, id string) (*model.Location, error)
	ListLocations(ctx context.Context) ([]model.Location, error)
}
