// Package dto defines the transport-level request and response shapes of the
// compute service, decoupled from the core graph types.
package dto

import "errors"

var ErrBadWorkers = errors.New("worker count cannot be negative")
