package engine

import "errors"

// Domain errors for wheel operations.
var (
	// ErrWheelNotFound indicates an operation named an unregistered wheel.
	ErrWheelNotFound = errors.New("engine: wheel not found")

	// ErrWheelExists indicates AddWheel was called with an id already in use.
	ErrWheelExists = errors.New("engine: wheel already registered")
)
