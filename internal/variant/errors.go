package variant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-variant-service/internal/model"
)

var (
	ErrNothingToAssign  = errors.New("nothing to assign")
	ErrExceedsRemaining = errors.New("assigned quantity exceeds remaining stock")
	ErrMissingImages    = errors.New("variants missing a representative image")
	ErrNegativeQuantity = errors.New("quantity cannot be negative")
	ErrInvalidDelta     = errors.New("invalid allocation delta")
	ErrStaleAllocation  = errors.New("remaining stock changed since the session started")
	ErrLocationBusy     = errors.New("location is being edited, please try again")
	ErrLocationNotFound = errors.New("location not found")
	ErrSessionState     = errors.New("operation not allowed in current session state")
	ErrRecordsChanged   = errors.New("variant records changed during merge")
)

// ValidationError reports why a commit was refused. Nothing has been
// mutated when it is returned.
type ValidationError struct {
	Reason    error
	Detail    string
	Missing   []model.VariantAttribute
	Requested int
	Available int
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Reason, ErrMissingImages):
		names := make([]string, 0, len(e.Missing))
		for _, m := range e.Missing {
			names = append(names, m.Name)
		}
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(names, ", "))
	case errors.Is(e.Reason, ErrExceedsRemaining), errors.Is(e.Reason, ErrStaleAllocation):
		return fmt.Sprintf("%s: requested %d, available %d", e.Reason, e.Requested, e.Available)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
	default:
		return e.Reason.Error()
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}
