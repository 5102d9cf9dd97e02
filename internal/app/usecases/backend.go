// Package usecases orchestrates plan execution: the Backend implementations
// that evaluate a resolved plan, and the Model facade tying declared inputs,
// requested outputs, and a backend together.
// PRINCIPLES:
// - KISS: backends walk an already-validated plan; no graph analysis here
// - SRP: plan resolves, backends evaluate, Model orchestrates
// - Memoize per call: each node's forward runs exactly once per Execute
package usecases

import (
	"context"
	"fmt"

	"github.com/cbalona/reinsurance/internal/core/graph"
	"github.com/cbalona/reinsurance/internal/core/ndarray"
	"github.com/cbalona/reinsurance/internal/core/plan"
	"github.com/cbalona/reinsurance/internal/infrastructure/metrics"
)

// Results holds the materialized output channels of every executed task,
// keyed by node id then channel name.
type Results map[string]map[string]*ndarray.Array

// Backend evaluates a resolved plan against a set of input values keyed by
// input node id. Implementations must honor ctx cancellation between tasks.
type Backend interface {
	Name() string
	Execute(ctx context.Context, p *plan.Plan, inputs map[string]*ndarray.Array) (Results, error)
}

// gatherInputs assembles a task's Forward input map from the already
// materialized results of its upstream nodes, looked up by node id.
func gatherInputs(n *graph.Node, lookup func(id string) (map[string]*ndarray.Array, bool)) (map[string]*ndarray.Array, error) {
	edges := n.Inputs()
	in := make(map[string]*ndarray.Array, len(edges))
	for _, e := range edges {
		channels, ok := lookup(e.From.ID())
		if !ok {
			return nil, fmt.Errorf("%w: node %q ran before its dependency %q",
				ErrBackendExecution, n.ID(), e.From.ID())
		}
		v, ok := channels[e.FromChannel]
		if !ok {
			return nil, fmt.Errorf("%w: node %q produced no channel %q",
				ErrBackendExecution, e.From.ID(), e.FromChannel)
		}
		in[e.ToChannel] = v
	}
	return in, nil
}

// runTask evaluates one task: input nodes are seeded from the supplied
// values, everything else runs its forwarder.
func runTask(task plan.Task, inputs map[string]*ndarray.Array, lookup func(id string) (map[string]*ndarray.Array, bool)) (map[string]*ndarray.Array, error) {
	if task.Node.Kind() == graph.KindInput {
		v, ok := inputs[task.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingInput, task.ID)
		}
		return map[string]*ndarray.Array{graph.ChannelValue: v}, nil
	}

	in, err := gatherInputs(task.Node, lookup)
	if err != nil {
		return nil, err
	}
	out, err := task.Node.Forwarder().Forward(in)
	if err != nil {
		metrics.TaskFailed(task.Node.Kind())
		return nil, fmt.Errorf("%w: node %q: %w", ErrBackendExecution, task.ID, err)
	}
	metrics.TaskExecuted(task.Node.Kind())
	return out, nil
}

// SequentialBackend walks the plan in its topological order on the calling
// goroutine. It is the reference implementation the parallel backend must
// agree with.
type SequentialBackend struct{}

// NewSequentialBackend creates a single-threaded backend.
func NewSequentialBackend() *SequentialBackend { return &SequentialBackend{} }

// Name identifies the backend in logs and metrics.
func (*SequentialBackend) Name() string { return "sequential" }

// Execute evaluates every task in plan order.
func (*SequentialBackend) Execute(ctx context.Context, p *plan.Plan, inputs map[string]*ndarray.Array) (Results, error) {
	results := make(Results, p.Len())
	for _, task := range p.Tasks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackendExecution, err)
		}
		out, err := runTask(task, inputs, func(id string) (map[string]*ndarray.Array, bool) {
			v, ok := results[id]
			return v, ok
		})
		if err != nil {
			return nil, err
		}
		results[task.ID] = out
	}
	return results, nil
}
