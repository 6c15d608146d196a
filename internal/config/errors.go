package config

import (
	"errors"
	"fmt"
)

// ErrConfig indicates a missing, unreadable or malformed configuration
// resource.
var ErrConfig = errors.New("config: invalid configuration")

// Error carries the resource path and cause of a configuration failure.
// It matches both ErrConfig and the underlying cause.
type Error struct {
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("config: %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("config: %s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfig}
	}
	return []error{ErrConfig, e.Err}
}
