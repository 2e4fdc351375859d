package model

import "strings"

type VariantKind string

const (
	VariantKindColor VariantKind = "color"
	VariantKindShape VariantKind = "shape"
)

func (k VariantKind) Valid() bool {
	return k == VariantKindColor || k == VariantKindShape
}

// VariantAttribute is a product-level assignable value such as a color or a
// shape. It is owned by the product editor and read-only here.
type VariantAttribute struct {
	BaseModel
	ProductID string      `db:"product_id" json:"product_id"`
	Name      string      `db:"name" json:"name"`
	Kind      VariantKind `db:"kind" json:"kind"`
	ColorHex  *string     `db:"color_hex" json:"color_hex,omitempty"`
	Image     *string     `db:"image" json:"image,omitempty"`
}

func (a *VariantAttribute) HasImage() bool {
	return a.Image != nil && strings.TrimSpace(*a.Image) != ""
}

// VariantKey identifies a variant within one (product, location) scope.
type VariantKey struct {
	Kind VariantKind `json:"kind"`
	Name string      `json:"name"`
}

// Normalize trims the name and defaults an empty kind to color.
func (k VariantKey) Normalize() VariantKey {
	k.Name = strings.TrimSpace(k.Name)
	if k.Kind == "" {
		k.Kind = VariantKindColor
	}
	return k
}

// VariantRecord assigns part of a location's stock to a named variant.
// At most one record may exist per (product, location, kind, name); the
// consolidation pass restores that when it is violated.
type VariantRecord struct {
	BaseModel
	ProductID    string      `db:"product_id" json:"product_id"`
	LocationID   string      `db:"location_id" json:"location_id"`
	Kind         VariantKind `db:"kind" json:"kind"`
	Name         string      `db:"name" json:"name"`
	Quantity     int         `db:"quantity" json:"quantity"`
	EncodedValue string      `db:"value" json:"value"`
}

func (r *VariantRecord) Key() VariantKey {
	return VariantKey{Kind: r.Kind, Name: r.Name}
}

func (r *VariantRecord) Value() VariantValue {
	return DecodeVariantValue(r.EncodedValue)
}
