package risk

import (
	"errors"
	"fmt"

	"github.com/riskgraph/internal/validation"
	"github.com/riskgraph/pkg/models"
)

var (
	// ErrInvalidTransition is returned for a status change outside the allowed edges
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrMethodNotFound is returned when a scoring method code is unknown
	ErrMethodNotFound = errors.New("scoring method not found")

	// ErrMissingInputs is returned when scoring inputs are absent or of the wrong variant
	ErrMissingInputs = errors.New("scoring inputs missing")
)

// TransitionError reports a rejected status change. It matches both
// ErrInvalidTransition and validation.ErrValidation.
type TransitionError struct {
	From models.RiskStatus
	To   models.RiskStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition || target == validation.ErrValidation
}

func missingInputs(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %w", ErrMissingInputs, validation.New("inputs", format, args...))
}
