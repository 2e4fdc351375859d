package dto

import (
	"time"

	"github.com/fekuna/omnipos-variant-service/internal/model"
)

type VariantQuantity struct {
	Kind     model.VariantKind `json:"kind"`
	Name     string            `json:"name"`
	Quantity int               `json:"quantity"`
	ImageURL string            `json:"image_url,omitempty"`
}

type AllocationState struct {
	InventoryQuantity   int               `json:"inventory_quantity"`
	SpecifiedQuantity   int               `json:"specified_quantity"`
	PlaceholderQuantity int               `json:"placeholder_quantity"`
	UnassignedQuantity  int               `json:"unassigned_quantity"`
	TotalUnspecified    int               `json:"total_unspecified"`
	Variants            []VariantQuantity `json:"variants"`
}

type ValidationResult struct {
	CanCommit     bool                     `json:"can_commit"`
	Reason        string                   `json:"reason,omitempty"`
	Requested     int                      `json:"requested"`
	Available     int                      `json:"available"`
	MissingImages []model.VariantAttribute `json:"missing_images"`
	State         AllocationState          `json:"state"`
}

type Stage string

const (
	StageUpload Stage = "upload"
	StageStore  Stage = "store"
)

type VariantOutcome struct {
	Kind        model.VariantKind `json:"kind"`
	Name        string            `json:"name"`
	Quantity    int               `json:"quantity"`
	NewQuantity int               `json:"new_quantity,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	Stage       Stage             `json:"stage,omitempty"`
	Error       string            `json:"error,omitempty"`
}

type CommitResult struct {
	Succeeded []VariantOutcome `json:"succeeded"`
	Failed    []VariantOutcome `json:"failed"`
	State     AllocationState  `json:"state"`
	// StateStale is set when the post-commit state could not be reloaded and
	// State is the pre-commit snapshot.
	StateStale bool `json:"state_stale,omitempty"`
	// PlaceholderShortfall is the number of units that should have been taken
	// off the placeholder records but were not. While it is non-zero the
	// location reports more allocated stock than it holds.
	PlaceholderShortfall int `json:"placeholder_shortfall,omitempty"`
}

func (r *CommitResult) Partial() bool {
	return len(r.Failed) > 0 && len(r.Succeeded) > 0
}

func (r *CommitResult) SucceededTotal() int {
	total := 0
	for _, o := range r.Succeeded {
		total += o.Quantity
	}
	return total
}

type ConsolidationReport struct {
	Groups      int `json:"groups"`
	Merged      int `json:"merged"`
	RowsDeleted int `json:"rows_deleted"`
	Failed      int `json:"failed"`
}

type CommittedEvent struct {
	EventID    string           `json:"event_id"`
	EventType  string           `json:"event_type"`
	ProductID  string           `json:"product_id"`
	LocationID string           `json:"location_id"`
	StaffID    string           `json:"staff_id,omitempty"`
	Variants   []VariantOutcome `json:"variants"`
	State      AllocationState  `json:"state"`
	Timestamp  time.Time        `json:"timestamp"`
}
