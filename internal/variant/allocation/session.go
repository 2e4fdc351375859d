package allocation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/internal/variant"
	"github.com/fekuna/omnipos-variant-service/internal/variant/dto"
)

type Phase int

const (
	PhaseNoLocationSelected Phase = iota
	PhaseLocationSelected
	PhaseEditingDeltas
	PhaseCommitting
)

func (p Phase) String() string {
	switch p {
	case PhaseNoLocationSelected:
		return "no_location_selected"
	case PhaseLocationSelected:
		return "location_selected"
	case PhaseEditingDeltas:
		return "editing_deltas"
	case PhaseCommitting:
		return "committing"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Session is one user's allocation edit of one product at one location. It
// holds no I/O handles: state comes in from the store and the commit input
// goes out to the orchestrator.
type Session struct {
	ProductID       string
	PlaceholderName string

	phase      Phase
	locationID string
	state      dto.AllocationState
	deltas     map[model.VariantKey]dto.PendingDelta
	images     map[model.VariantKey]dto.StagedImage
}

func NewSession(productID, placeholderName string) *Session {
	return &Session{
		ProductID:       productID,
		PlaceholderName: placeholderName,
		deltas:          map[model.VariantKey]dto.PendingDelta{},
		images:          map[model.VariantKey]dto.StagedImage{},
	}
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) LocationID() string { return s.locationID }

func (s *Session) State() dto.AllocationState { return s.state }

// SelectLocation switches the session to a location whose state was just
// computed. Pending edits of the previous location are discarded.
func (s *Session) SelectLocation(locationID string, state dto.AllocationState) error {
	if s.phase == PhaseCommitting {
		return s.transitionError("select location")
	}
	if strings.TrimSpace(locationID) == "" {
		return &variant.ValidationError{Reason: variant.ErrInvalidDelta, Detail: "location is required"}
	}
	if locationID != s.locationID {
		s.deltas = map[model.VariantKey]dto.PendingDelta{}
		s.images = map[model.VariantKey]dto.StagedImage{}
	}
	s.locationID = locationID
	s.state = state
	s.phase = PhaseLocationSelected
	if len(s.deltas) > 0 {
		s.phase = PhaseEditingDeltas
	}
	return nil
}

// SetDelta sets the pending quantity of one variant, clamped to its input
// ceiling, and returns the quantity actually kept. Zero removes the delta.
func (s *Session) SetDelta(delta dto.PendingDelta) (int, error) {
	if err := s.requireEditable("set delta"); err != nil {
		return 0, err
	}
	normalized, err := NormalizeDeltas([]dto.PendingDelta{delta}, s.PlaceholderName)
	if err != nil {
		return 0, err
	}
	if len(normalized) == 0 {
		if delta.Kind == "" {
			delta.Kind = model.VariantKindColor
		}
		delete(s.deltas, model.VariantKey{Kind: delta.Kind, Name: strings.TrimSpace(delta.Name)})
		s.settle()
		return 0, nil
	}

	d := normalized[0]
	if ceiling := s.Ceiling(d.Key()); d.Quantity > ceiling {
		d.Quantity = ceiling
	}
	if d.Quantity == 0 {
		delete(s.deltas, d.Key())
	} else {
		s.deltas[d.Key()] = d
	}
	s.settle()
	return d.Quantity, nil
}

// StageImage keeps a locally picked image for a variant until commit.
func (s *Session) StageImage(img dto.StagedImage) error {
	if err := s.requireEditable("stage image"); err != nil {
		return err
	}
	key := img.Key()
	if key.Name == "" {
		return &variant.ValidationError{Reason: variant.ErrInvalidDelta, Detail: "image must name a variant"}
	}
	if !key.Kind.Valid() {
		return &variant.ValidationError{Reason: variant.ErrInvalidDelta, Detail: "unknown variant kind " + string(key.Kind)}
	}
	if len(img.Data) == 0 && img.UploadedURL == "" {
		return &variant.ValidationError{Reason: variant.ErrInvalidDelta, Detail: "image is empty"}
	}
	img.Kind, img.VariantName = key.Kind, key.Name
	s.images[key] = img
	s.phase = PhaseEditingDeltas
	return nil
}

// Deltas returns the pending deltas in a stable order.
func (s *Session) Deltas() []dto.PendingDelta {
	out := make([]dto.PendingDelta, 0, len(s.deltas))
	for _, d := range s.deltas {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ImageKeys lists the variants with a staged image, in the same order as
// Deltas.
func (s *Session) ImageKeys() []model.VariantKey {
	keys := make([]model.VariantKey, 0, len(s.images))
	for key := range s.images {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

func (s *Session) Ceiling(key model.VariantKey) int {
	return InputCeiling(s.state, s.Deltas(), key)
}

func (s *Session) Remaining() int {
	return Remaining(s.state, s.Deltas())
}

func (s *Session) MissingImages(catalog []model.VariantAttribute) []model.VariantAttribute {
	return MissingImages(s.Deltas(), catalog, s.ImageKeys())
}

// BeginCommit gates the pending edits and, when they pass, freezes the
// session and returns the input for the orchestrator.
func (s *Session) BeginCommit(catalog []model.VariantAttribute, staffID string) (*dto.CommitInput, error) {
	if s.phase != PhaseEditingDeltas && s.phase != PhaseLocationSelected {
		return nil, s.transitionError("begin commit")
	}
	deltas := s.Deltas()
	if err := Check(deltas, s.state, MissingImages(deltas, catalog, s.ImageKeys())); err != nil {
		return nil, err
	}

	images := make([]dto.StagedImage, 0, len(s.images))
	for _, key := range s.ImageKeys() {
		images = append(images, s.images[key])
	}
	expected := s.state.TotalUnspecified
	s.phase = PhaseCommitting

	return &dto.CommitInput{
		ProductID:                s.ProductID,
		LocationID:               s.locationID,
		StaffID:                  staffID,
		Deltas:                   deltas,
		Images:                   images,
		ExpectedTotalUnspecified: &expected,
	}, nil
}

// CompleteCommit returns the session to LocationSelected with the state the
// store reported. Failed variants stay pending, with any image that reached
// storage remembered by URL, so they can be retried.
func (s *Session) CompleteCommit(result *dto.CommitResult) error {
	if s.phase != PhaseCommitting {
		return s.transitionError("complete commit")
	}

	// failed maps each failed variant to the image URL it reached, if any.
	failed := make(map[model.VariantKey]string, len(result.Failed))
	for _, o := range result.Failed {
		failed[model.VariantKey{Kind: o.Kind, Name: o.Name}] = o.ImageURL
	}

	for key := range s.deltas {
		if _, ok := failed[key]; !ok {
			delete(s.deltas, key)
		}
	}
	for key, img := range s.images {
		if _, kept := s.deltas[key]; !kept {
			delete(s.images, key)
			continue
		}
		if url := failed[key]; url != "" {
			img.UploadedURL = url
			img.Data = nil
			s.images[key] = img
		}
	}

	s.state = result.State
	s.phase = PhaseLocationSelected
	return nil
}

// AbortCommit unfreezes the session after the orchestrator refused the
// commit without writing anything.
func (s *Session) AbortCommit() error {
	if s.phase != PhaseCommitting {
		return s.transitionError("abort commit")
	}
	s.phase = PhaseEditingDeltas
	return nil
}

func (s *Session) requireEditable(op string) error {
	if s.phase == PhaseLocationSelected || s.phase == PhaseEditingDeltas {
		return nil
	}
	return s.transitionError(op)
}

func (s *Session) settle() {
	if len(s.deltas) == 0 && len(s.images) == 0 {
		s.phase = PhaseLocationSelected
		return
	}
	s.phase = PhaseEditingDeltas
}

func (s *Session) transitionError(op string) error {
	return fmt.Errorf("%s in %s: %w", op, s.phase, variant.ErrSessionState)
}
