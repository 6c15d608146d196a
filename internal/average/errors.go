package average

import (
	"errors"
	"fmt"

	"github.com/san-kum/phaseavg/internal/field"
)

var (
	// ErrNoTimes indicates a run over an empty timestamp list.
	ErrNoTimes = errors.New("average: no timestamps to average")

	// ErrFieldNotFound indicates the base field is absent at the first timestamp.
	ErrFieldNotFound = errors.New("average: base field not found")

	// ErrTypeMismatch indicates the base field is stored under another kind.
	ErrTypeMismatch = errors.New("average: base field type mismatch")
)

// FieldError wraps a base field validation failure with its context. It
// matches its category (ErrFieldNotFound or ErrTypeMismatch) and its cause.
type FieldError struct {
	Field string
	Time  string
	Kind  field.Kind
	Err   error
	Cause error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s (%s) at time %s: %v", e.Err, e.Field, e.Kind.ClassName(), e.Time, e.Cause)
}

func (e *FieldError) Unwrap() []error {
	return []error{e.Err, e.Cause}
}

func baseFieldError(req Request, timeName string, err error) error {
	fe := &FieldError{Field: req.Field, Time: timeName, Kind: req.Kind, Cause: err}
	switch {
	case errors.Is(err, field.ErrNotFound):
		fe.Err = ErrFieldNotFound
	case errors.Is(err, field.ErrKindMismatch):
		fe.Err = ErrTypeMismatch
	default:
		return fmt.Errorf("average: read base field %s at %s: %w", req.Field, timeName, err)
	}
	return fe
}
