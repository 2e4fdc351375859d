package model

type LocationKind string

const (
	LocationKindBranch    LocationKind = "branch"
	LocationKindWarehouse LocationKind = "warehouse"
)

// Location is a branch or warehouse holding its own stock count per product.
type Location struct {
	BaseModel
	Name string       `db:"name" json:"name"`
	Kind LocationKind `db:"kind" json:"kind"`
}
