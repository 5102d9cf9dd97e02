package reinsurance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacadeQuotaShareNet(t *testing.T) {
	gross := Input("gross")
	qs, err := QuotaShare("qs", QuotaShareParams{Cession: 0.4, Commission: 0.1}, gross)
	require.NoError(t, err)

	net := gross.Sub(Recovery("qs_recovery", qs)).Sub(Commission("qs_commission", qs))

	m, err := NewModel([]*Node{gross}, []*Node{net})
	require.NoError(t, err)

	out, err := m.Compute(context.Background(), Inputs{
		"gross": MustNewArray([]int{3}, []float64{100, 200, 300}),
	})
	require.NoError(t, err)
	require.Len(t, out, 1)

	// net = gross * (1 - 0.4 - 0.1)
	want := MustNewArray([]int{3}, []float64{50, 100, 150})
	assert.True(t, want.AllClose(out[0], 1e-9), "got %v", out[0])
}

func TestFacadeParallelBackend(t *testing.T) {
	gross := Input("gross")
	xl, err := ExcessOfLoss("xl", ExcessOfLossParams{
		Attachment:     50,
		Width:          25,
		RateOnLine:     0.1,
		Reinstatements: 1,
	}, gross)
	require.NoError(t, err)

	net := gross.Sub(Recovery("xl_recovery", xl))

	m, err := NewModel([]*Node{gross}, []*Node{net}, WithBackend(NewParallelBackend(4)))
	require.NoError(t, err)

	out, err := m.Compute(context.Background(), Inputs{
		"gross": MustNewArray([]int{2}, []float64{60, 80}),
	})
	require.NoError(t, err)

	// Occurrence 1 recovers 10, occurrence 2 a full width of 25.
	want := MustNewArray([]int{2}, []float64{50, 55})
	assert.True(t, want.AllClose(out[0], 1e-9), "got %v", out[0])
}

func TestFacadeVisualize(t *testing.T) {
	gross := Input("gross")
	net := gross.MulScalar(0.5)

	m, err := NewModel([]*Node{gross}, []*Node{net})
	require.NoError(t, err)
	assert.Contains(t, m.Visualize(), "digraph")
}
