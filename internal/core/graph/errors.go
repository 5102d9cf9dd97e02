// Package graph defines domain-specific errors
package graph

import "errors"

// Domain errors - defined once, used everywhere
var (
	ErrNilOperand     = errors.New("operand node cannot be nil")
	ErrNilForwarder   = errors.New("forwarder cannot be nil")
	ErrMissingChannel = errors.New("required input channel not materialized")
	ErrInputForward   = errors.New("input node evaluated without a bound value")
)
