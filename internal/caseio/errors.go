package caseio

import (
	"errors"
	"fmt"

	"github.com/san-kum/phaseavg/internal/field"
)

var (
	// ErrNoTimes indicates a time selection that matched no time directory.
	ErrNoTimes = errors.New("caseio: no time specified or available")

	// ErrCorrupt indicates a field file that could not be decoded.
	ErrCorrupt = errors.New("caseio: corrupt field file")

	// ErrBadRange indicates an unparseable time range expression.
	ErrBadRange = errors.New("caseio: invalid time range")
)

// KindMismatchError reports a field stored under a different value kind
// than the one requested.
type KindMismatchError struct {
	Name      string
	Time      string
	Stored    field.Kind
	Requested field.Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("caseio: %s at %s is %s, requested %s",
		e.Name, e.Time, e.Stored.ClassName(), e.Requested.ClassName())
}

func (e *KindMismatchError) Unwrap() error {
	return field.ErrKindMismatch
}
