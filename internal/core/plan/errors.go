// Package plan defines domain-specific errors
package plan

import "errors"

// Resolution errors - all are detected during plan construction, before any
// forward computation runs.
var (
	ErrNoOutputs      = errors.New("no output nodes requested")
	ErrCycle          = errors.New("cyclic dependency detected")
	ErrUnboundInput   = errors.New("reachable input node is not declared as a model input")
	ErrAmbiguousName  = errors.New("two distinct nodes share the same name")
	ErrUnknownChannel = errors.New("edge consumes a channel its upstream node does not produce")
)
