package usecases

import "errors"

var (
	// ErrMissingInput is returned by Compute when a declared model input has
	// no value in the supplied input map.
	ErrMissingInput = errors.New("no value supplied for declared input")

	// ErrUnknownInput is returned by Compute when the input map carries a key
	// that matches no declared input.
	ErrUnknownInput = errors.New("value supplied for undeclared input")

	// ErrBackendExecution wraps any failure raised while evaluating a node's
	// forward computation. The original cause stays matchable via errors.Is.
	ErrBackendExecution = errors.New("backend execution failed")

	// ErrNoWorkers is returned when a parallel backend is configured with a
	// non-positive worker count.
	ErrNoWorkers = errors.New("worker count must be positive")
)
