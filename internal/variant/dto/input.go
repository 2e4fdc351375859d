package dto

import "github.com/fekuna/omnipos-variant-service/internal/model"

// PendingDelta is the quantity a user proposes to add to one variant.
type PendingDelta struct {
	Kind     model.VariantKind `json:"kind"`
	Name     string            `json:"name"`
	Quantity int               `json:"quantity"`
	Barcode  string            `json:"barcode,omitempty"`
}

func (d PendingDelta) Key() model.VariantKey {
	return model.VariantKey{Kind: d.Kind, Name: d.Name}
}

// StagedImage is an image picked during the session. Data is base64 in JSON.
// UploadedURL is set when the image already reached blob storage in an
// earlier, partially failed commit.
type StagedImage struct {
	Kind        model.VariantKind `json:"kind,omitempty"`
	VariantName string            `json:"variant_name"`
	FileName    string            `json:"file_name"`
	ContentType string            `json:"content_type"`
	Data        []byte            `json:"data,omitempty"`
	UploadedURL string            `json:"uploaded_url,omitempty"`
}

// Key identifies the variant the image belongs to. An empty kind means color.
func (i StagedImage) Key() model.VariantKey {
	return model.VariantKey{Kind: i.Kind, Name: i.VariantName}.Normalize()
}

type ValidateInput struct {
	ProductID  string         `json:"-"`
	LocationID string         `json:"-"`
	Deltas     []PendingDelta `json:"deltas"`
	// SessionImages lists the variants with a locally staged image.
	SessionImages []model.VariantKey `json:"session_images"`
}

type CommitInput struct {
	ProductID  string         `json:"-"`
	LocationID string         `json:"-"`
	StaffID    string         `json:"-"`
	Deltas     []PendingDelta `json:"deltas"`
	Images     []StagedImage  `json:"images"`
	// ExpectedTotalUnspecified is the remaining quantity the user saw.
	ExpectedTotalUnspecified *int `json:"expected_total_unspecified,omitempty"`
}
