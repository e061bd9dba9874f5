package app

import "fmt"

// ErrUnknownTarget is returned when a named connection target is not configured.
type ErrUnknownTarget struct {
	Name string
}

func (e *ErrUnknownTarget) Error() string {
	return fmt.Sprintf("unknown target %q", e.Name)
}

// ErrConfig represents a configuration error.
type ErrConfig struct {
	Cause error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ErrConfig) Unwrap() error {
	return e.Cause
}
