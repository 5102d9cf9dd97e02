package layer

import (
	"fmt"

	"github.com/cbalona/reinsurance/internal/core/graph"
	"github.com/cbalona/reinsurance/internal/core/ndarray"
	"github.com/cbalona/reinsurance/pkg/validation"
)

// QuotaShareParams configures a proportional quota share treaty.
type QuotaShareParams struct {
	// Cession is the fraction of gross loss ceded to the reinsurer.
	Cession float64 `validate:"gte=0,lte=1"`
	// Commission is the ceding commission fraction on gross loss.
	Commission float64 `validate:"gte=0,lte=1"`
}

// QuotaShare applies a quota share treaty to the upstream node's default
// channel. The resulting node produces gross, recovery, and commission
// channels; parameters are validated before the node is created.
func QuotaShare(name string, p QuotaShareParams, x *graph.Node) (*graph.Node, error) {
	if x == nil {
		return nil, graph.ErrNilOperand
	}
	if err := validation.Struct(p); err != nil {
		return nil, fmt.Errorf("quota share %q: %w", name, err)
	}
	return graph.NewNode(name, &quotaShareForwarder{params: p}, x.DefaultEdge("x")), nil
}

type quotaShareForwarder struct {
	params QuotaShareParams
}

func (f *quotaShareForwarder) Kind() string { return KindQuotaShare }

func (f *quotaShareForwarder) OutputChannels() []string {
	return []string{ChannelGross, ChannelRecovery, ChannelCommission}
}

func (f *quotaShareForwarder) DefaultChannel() string { return ChannelGross }

func (f *quotaShareForwarder) Parameters() map[string]float64 {
	return map[string]float64{
		"cession":    f.params.Cession,
		"commission": f.params.Commission,
	}
}

func (f *quotaShareForwarder) Forward(in map[string]*ndarray.Array) (map[string]*ndarray.Array, error) {
	x, ok := in["x"]
	if !ok || x == nil {
		return nil, fmt.Errorf("%w: %q", graph.ErrMissingChannel, "x")
	}
	return map[string]*ndarray.Array{
		ChannelGross:      x,
		ChannelRecovery:   x.MulScalar(f.params.Cession),
		ChannelCommission: x.MulScalar(f.params.Commission),
	}, nil
}
