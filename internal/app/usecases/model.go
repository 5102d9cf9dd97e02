package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cbalona/reinsurance/internal/core/graph"
	"github.com/cbalona/reinsurance/internal/core/ndarray"
	"github.com/cbalona/reinsurance/internal/core/plan"
	"github.com/cbalona/reinsurance/internal/ctxlog"
	"github.com/cbalona/reinsurance/internal/infrastructure/metrics"
)

// Model binds a set of declared input nodes and requested output nodes to an
// execution backend. Resolution happens once, at construction: a Model that
// exists always holds a valid plan.
type Model struct {
	inputs  []*graph.Node
	outputs []*graph.Node
	plan    *plan.Plan
	backend Backend
}

// ModelOption customizes a Model at construction.
type ModelOption func(*Model)

// WithBackend selects the execution backend. The default is sequential.
func WithBackend(b Backend) ModelOption {
	return func(m *Model) { m.backend = b }
}

// NewModel resolves the outputs' dependency closure against the declared
// inputs and returns a ready-to-compute model. Structural problems (cycles,
// unbound inputs, duplicate names, channel mismatches) surface here, never
// from Compute.
func NewModel(inputs []*graph.Node, outputs []*graph.Node, opts ...ModelOption) (*Model, error) {
	p, err := plan.Resolve(outputs, inputs)
	if err != nil {
		metrics.IncPlanResolveFailures()
		return nil, err
	}
	metrics.IncPlansResolved()

	m := &Model{
		inputs:  append([]*graph.Node(nil), inputs...),
		outputs: append([]*graph.Node(nil), outputs...),
		plan:    p,
		backend: NewSequentialBackend(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Inputs returns the declared input nodes in declaration order.
func (m *Model) Inputs() []*graph.Node {
	return append([]*graph.Node(nil), m.inputs...)
}

// Outputs returns the requested output nodes in declaration order.
func (m *Model) Outputs() []*graph.Node {
	return append([]*graph.Node(nil), m.outputs...)
}

// Plan returns the resolved execution plan.
func (m *Model) Plan() *plan.Plan { return m.plan }

// Backend returns the execution backend in use.
func (m *Model) Backend() Backend { return m.backend }

// Compute evaluates the model for the given input values, keyed by input
// node id, and returns one array per output in output order. Each node's
// forward computation runs exactly once per call, shared subexpressions
// included.
func (m *Model) Compute(ctx context.Context, values map[string]*ndarray.Array) ([]*ndarray.Array, error) {
	if err := m.checkInputs(values); err != nil {
		return nil, err
	}

	execID := uuid.NewString()
	log := ctxlog.FromContext(ctx).With(
		"execution_id", execID,
		"backend", m.backend.Name(),
		"tasks", m.plan.Len(),
	)
	ctx = ctxlog.WithLogger(ctx, log)

	metrics.IncComputeCalls()
	start := time.Now()
	log.DebugContext(ctx, "compute started")

	results, err := m.backend.Execute(ctx, m.plan, values)
	if err != nil {
		metrics.IncComputeFailures()
		log.ErrorContext(ctx, "compute failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	out := make([]*ndarray.Array, len(m.outputs))
	for i, node := range m.outputs {
		channels, ok := results[node.ID()]
		if !ok {
			metrics.IncComputeFailures()
			return nil, fmt.Errorf("%w: output %q missing from results", ErrBackendExecution, node.ID())
		}
		v, ok := channels[node.DefaultChannel()]
		if !ok {
			metrics.IncComputeFailures()
			return nil, fmt.Errorf("%w: output %q produced no channel %q",
				ErrBackendExecution, node.ID(), node.DefaultChannel())
		}
		out[i] = v
	}

	log.DebugContext(ctx, "compute finished", "duration", time.Since(start))
	return out, nil
}

// ComputeNamed is Compute keyed by output node id, for callers that address
// outputs by name rather than position.
func (m *Model) ComputeNamed(ctx context.Context, values map[string]*ndarray.Array) (map[string]*ndarray.Array, error) {
	out, err := m.Compute(ctx, values)
	if err != nil {
		return nil, err
	}
	named := make(map[string]*ndarray.Array, len(out))
	for i, node := range m.outputs {
		named[node.ID()] = out[i]
	}
	return named, nil
}

// View returns the structural view of the model's dependency closure, for
// serialization and rendering.
func (m *Model) View() graph.GraphView {
	return graph.View(m.outputs...)
}

// Visualize renders the model's graph in Graphviz DOT form.
func (m *Model) Visualize() string {
	return m.View().DOT()
}

// checkInputs verifies the supplied value map covers the declared inputs
// exactly: nothing missing, nothing extra.
func (m *Model) checkInputs(values map[string]*ndarray.Array) error {
	declared := make(map[string]bool, len(m.inputs))
	for _, n := range m.inputs {
		declared[n.ID()] = true
		if v, ok := values[n.ID()]; !ok || v == nil {
			return fmt.Errorf("%w: %q", ErrMissingInput, n.ID())
		}
	}
	for name := range values {
		if !declared[name] {
			return fmt.Errorf("%w: %q", ErrUnknownInput, name)
		}
	}
	return nil
}
