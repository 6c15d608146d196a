package field

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFieldType indicates a field type word that names no value kind.
	ErrUnknownFieldType = errors.New("field: unknown field type")

	// ErrNotFound indicates a field absent from storage at the requested time.
	ErrNotFound = errors.New("field: not found")

	// ErrKindMismatch indicates a raw field stored under a different value kind.
	ErrKindMismatch = errors.New("field: value kind mismatch")

	// ErrEntityMismatch indicates two fields with different entity counts.
	ErrEntityMismatch = errors.New("field: entity count mismatch")

	// ErrMalformed indicates raw data whose length does not match its shape.
	ErrMalformed = errors.New("field: malformed raw data")
)

// KindError reports a field type word that could not be parsed.
type KindError struct {
	Input string
}

func (e *KindError) Error() string {
	return fmt.Sprintf("field: unknown field type %q (want one of %v)", e.Input, KindNames())
}

func (e *KindError) Unwrap() error {
	return ErrUnknownFieldType
}
