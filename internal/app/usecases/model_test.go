package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbalona/reinsurance/internal/core/graph"
	"github.com/cbalona/reinsurance/internal/core/ndarray"
	"github.com/cbalona/reinsurance/internal/core/plan"
)

func TestNewModelResolvesEagerly(t *testing.T) {
	x := graph.Input("x")
	y := graph.Input("y")
	out := x.Add(y)

	// y reachable but not declared: construction, not Compute, must fail.
	_, err := NewModel([]*graph.Node{x}, []*graph.Node{out})
	assert.ErrorIs(t, err, plan.ErrUnboundInput)
}

func TestModelComputeOutputOrder(t *testing.T) {
	x := graph.Input("x")
	a := x.AddScalar(1)
	b := x.MulScalar(2)

	m, err := NewModel([]*graph.Node{x}, []*graph.Node{a, b})
	require.NoError(t, err)

	out, err := m.Compute(context.Background(), map[string]*ndarray.Array{
		"x": ndarray.Scalar(10),
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, ndarray.Scalar(11).Equal(out[0]))
	assert.True(t, ndarray.Scalar(20).Equal(out[1]))
}

func TestModelComputeNamed(t *testing.T) {
	x := graph.Input("x")
	net := x.MulScalar(0.5)

	m, err := NewModel([]*graph.Node{x}, []*graph.Node{net})
	require.NoError(t, err)

	out, err := m.ComputeNamed(context.Background(), map[string]*ndarray.Array{
		"x": ndarray.Scalar(8),
	})
	require.NoError(t, err)
	require.Contains(t, out, net.ID())
	assert.True(t, ndarray.Scalar(4).Equal(out[net.ID()]))
}

func TestModelComputeInputChecks(t *testing.T) {
	x := graph.Input("x")
	out := x.AddScalar(1)

	m, err := NewModel([]*graph.Node{x}, []*graph.Node{out})
	require.NoError(t, err)

	_, err = m.Compute(context.Background(), map[string]*ndarray.Array{})
	assert.ErrorIs(t, err, ErrMissingInput)

	_, err = m.Compute(context.Background(), map[string]*ndarray.Array{
		"x":        ndarray.Scalar(1),
		"stranger": ndarray.Scalar(2),
	})
	assert.ErrorIs(t, err, ErrUnknownInput)
}

func TestModelWithBackend(t *testing.T) {
	x := graph.Input("x")
	out := x.AddScalar(1)

	par := NewParallelBackend(2)
	m, err := NewModel([]*graph.Node{x}, []*graph.Node{out}, WithBackend(par))
	require.NoError(t, err)
	assert.Equal(t, "parallel", m.Backend().Name())

	res, err := m.Compute(context.Background(), map[string]*ndarray.Array{
		"x": ndarray.Scalar(41),
	})
	require.NoError(t, err)
	assert.True(t, ndarray.Scalar(42).Equal(res[0]))
}

func TestModelVisualize(t *testing.T) {
	x := graph.Input("premium")
	out := x.MulScalar(0.4)

	m, err := NewModel([]*graph.Node{x}, []*graph.Node{out})
	require.NoError(t, err)

	dot := m.Visualize()
	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, "premium")
	assert.Contains(t, dot, out.ID())
}
