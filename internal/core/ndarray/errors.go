// Package ndarray defines domain-specific errors
package ndarray

import "errors"

// Domain errors - defined once, used everywhere
var (
	ErrShapeMismatch = errors.New("array shapes are not broadcast-compatible")
	ErrBadShape      = errors.New("shape does not match data length")
	ErrBadIndex      = errors.New("index out of range")
)
