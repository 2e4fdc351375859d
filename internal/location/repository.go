package location

import (
	"context"

	"github.com/fekuna/omnipos-variant-service/internal/model"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Location, error)
	FindAll(ctx context.Context) ([]model.Location, error)
}
