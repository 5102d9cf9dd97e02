// Package integration exercises the full stack: facade, layers, resolver,
// and both execution backends.
package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbalona/reinsurance/internal/core/graph"
	"github.com/cbalona/reinsurance/internal/core/ndarray"
	"github.com/cbalona/reinsurance/pkg/reinsurance"
)

// buildProgram assembles the reference structure: a 40% quota share, then a
// 25 xs 25 and a 10 xs 50 excess layer over the retained position.
func buildProgram(t *testing.T) (losses *reinsurance.Node, net *reinsurance.Node) {
	t.Helper()

	losses = reinsurance.Input("losses")
	qs, err := reinsurance.QuotaShare("qs", reinsurance.QuotaShareParams{Cession: 0.4}, losses)
	require.NoError(t, err)
	qsRecovery := reinsurance.Recovery("qs_recovery", qs)

	retained := losses.Sub(qsRecovery)

	xol1, err := reinsurance.ExcessOfLoss("xol1", reinsurance.ExcessOfLossParams{
		Attachment:     25,
		Width:          25,
		RateOnLine:     0.1,
		Reinstatements: 2,
	}, retained)
	require.NoError(t, err)

	xol2, err := reinsurance.ExcessOfLoss("xol2", reinsurance.ExcessOfLossParams{
		Attachment:     50,
		Width:          10,
		RateOnLine:     0.1,
		Reinstatements: 3,
	}, retained)
	require.NoError(t, err)

	net = retained.
		Sub(reinsurance.Recovery("xol1_recovery", xol1)).
		Sub(reinsurance.ReinstatementPremium("xol1_premium", xol1)).
		Sub(reinsurance.Recovery("xol2_recovery", xol2)).
		Sub(reinsurance.ReinstatementPremium("xol2_premium", xol2))
	return losses, net
}

func lossInput(t *testing.T) *reinsurance.Array {
	t.Helper()
	a, err := reinsurance.FromNested2D([][]float64{
		{100, 100, 100},
		{50, 50, 50},
		{20, 20, 20},
	})
	require.NoError(t, err)
	return a
}

func wantNet(t *testing.T) *reinsurance.Array {
	t.Helper()
	a, err := reinsurance.FromNested2D([][]float64{
		{21.5, 21.5, 24.0},
		{24.5, 24.5, 24.5},
		{12.0, 12.0, 12.0},
	})
	require.NoError(t, err)
	return a
}

func TestEndToEndNetPosition(t *testing.T) {
	backends := map[string]reinsurance.Backend{
		"sequential": reinsurance.NewSequentialBackend(),
		"parallel":   reinsurance.NewParallelBackend(4),
	}
	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			losses, net := buildProgram(t)

			m, err := reinsurance.NewModel(
				[]*reinsurance.Node{losses},
				[]*reinsurance.Node{net},
				reinsurance.WithBackend(backend),
			)
			require.NoError(t, err)

			out, err := m.Compute(context.Background(), reinsurance.Inputs{
				"losses": lossInput(t),
			})
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.True(t, wantNet(t).AllClose(out[0], 1e-9), "got %v", out[0])
		})
	}
}

func TestEndToEndDeterminism(t *testing.T) {
	losses, net := buildProgram(t)
	m, err := reinsurance.NewModel(
		[]*reinsurance.Node{losses},
		[]*reinsurance.Node{net},
		reinsurance.WithBackend(reinsurance.NewParallelBackend(8)),
	)
	require.NoError(t, err)

	first, err := m.Compute(context.Background(), reinsurance.Inputs{"losses": lossInput(t)})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := m.Compute(context.Background(), reinsurance.Inputs{"losses": lossInput(t)})
		require.NoError(t, err)
		assert.True(t, first[0].Equal(again[0]), "run %d diverged", i)
	}
}

func TestEndToEndOrderPreservation(t *testing.T) {
	losses, net := buildProgram(t)
	gross := losses.MulScalar(1) // distinct node, same values

	m, err := reinsurance.NewModel(
		[]*reinsurance.Node{losses},
		[]*reinsurance.Node{net, gross},
	)
	require.NoError(t, err)

	out, err := m.Compute(context.Background(), reinsurance.Inputs{"losses": lossInput(t)})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, wantNet(t).AllClose(out[0], 1e-9))
	assert.True(t, lossInput(t).Equal(out[1]))
}

// poisonForwarder fails the test if it ever runs.
type poisonForwarder struct {
	t *testing.T
}

func (poisonForwarder) Kind() string             { return "poison" }
func (poisonForwarder) OutputChannels() []string { return []string{graph.ChannelValue} }
func (poisonForwarder) DefaultChannel() string   { return graph.ChannelValue }
func (f poisonForwarder) Forward(map[string]*ndarray.Array) (map[string]*ndarray.Array, error) {
	f.t.Error("node outside the output closure was evaluated")
	return nil, nil
}

func TestEndToEndClosureMinimality(t *testing.T) {
	losses, net := buildProgram(t)

	// An unused branch hanging off the input must never run.
	poisoned := graph.NewNode("poisoned", poisonForwarder{t: t}, losses.DefaultEdge("x"))
	_ = poisoned.AddScalar(1)

	m, err := reinsurance.NewModel([]*reinsurance.Node{losses}, []*reinsurance.Node{net})
	require.NoError(t, err)

	_, err = m.Compute(context.Background(), reinsurance.Inputs{"losses": lossInput(t)})
	require.NoError(t, err)
}

func TestEndToEndUnboundInput(t *testing.T) {
	losses := reinsurance.Input("losses")
	other := reinsurance.Input("expenses")
	net := losses.Sub(other)

	_, err := reinsurance.NewModel([]*reinsurance.Node{losses}, []*reinsurance.Node{net})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expenses")
}
