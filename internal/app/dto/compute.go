package dto

import (
	"time"

	"github.com/cbalona/reinsurance/pkg/serialization"
)

// ComputeRequest asks the server to evaluate the loaded program for one set
// of input arrays, keyed by input node id.
type ComputeRequest struct {
	Inputs map[string]serialization.ArrayPayload `json:"inputs" msgpack:"inputs"`
	Config ComputeConfig                         `json:"config" msgpack:"config"`
}

// ComputeConfig selects backend behavior for a single request.
type ComputeConfig struct {
	Parallel bool          `json:"parallel" msgpack:"parallel"` // use the worker-pool backend
	Workers  int           `json:"workers" msgpack:"workers"`   // pool size; 0 means one per CPU
	Timeout  time.Duration `json:"timeout" msgpack:"timeout"`   // per-request deadline
}

// ComputeResponse carries the evaluated outputs keyed by output node id.
type ComputeResponse struct {
	ExecutionID string                                `json:"execution_id" msgpack:"execution_id"`
	Status      ComputeStatus                         `json:"status" msgpack:"status"`
	Outputs     map[string]serialization.ArrayPayload `json:"outputs,omitempty" msgpack:"outputs,omitempty"`
	StartTime   time.Time                             `json:"start_time" msgpack:"start_time"`
	Duration    time.Duration                         `json:"duration" msgpack:"duration"`
	Error       string                                `json:"error,omitempty" msgpack:"error,omitempty"`
}

// ComputeStatus is the terminal state of a compute request.
type ComputeStatus string

const (
	ComputeStatusCompleted ComputeStatus = "completed"
	ComputeStatusFailed    ComputeStatus = "failed"
)

// Validate checks the request and applies defaults. An empty input map is
// valid: the server fills inputs from the program's declared defaults.
func (req *ComputeRequest) Validate() error {
	if req.Config.Workers < 0 {
		return ErrBadWorkers
	}
	if req.Config.Timeout <= 0 {
		req.Config.Timeout = time.Minute
	}
	return nil
}
