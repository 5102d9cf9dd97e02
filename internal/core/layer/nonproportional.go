package layer

import (
	"fmt"

	"github.com/cbalona/reinsurance/internal/core/graph"
	"github.com/cbalona/reinsurance/internal/core/ndarray"
	"github.com/cbalona/reinsurance/pkg/validation"
)

// ExcessOfLossParams configures a non-proportional excess-of-loss layer.
// The cumulative reinstatement arithmetic runs along the last (occurrence)
// axis of the loss array.
type ExcessOfLossParams struct {
	// Attachment is the loss level at which the layer starts to pay.
	Attachment float64 `validate:"gte=0"`
	// Width is the layer limit above the attachment.
	Width float64 `validate:"gt=0"`
	// Deductible is the coinsurance fraction retained by the cedent.
	Deductible float64 `validate:"gte=0,lte=1"`
	// RateOnLine prices reinstatement premium as a fraction of width.
	RateOnLine float64 `validate:"gte=0"`
	// Reinstatements is the number of times the layer limit restores.
	Reinstatements int `validate:"gte=0,gtefield=FreeReinstatements"`
	// FreeReinstatements restore without premium.
	FreeReinstatements int `validate:"gte=0"`
}

// ExcessOfLoss applies an excess-of-loss layer to the upstream node's
// default channel. The resulting node produces gross, recovery, and
// reinstatement_premium channels.
func ExcessOfLoss(name string, p ExcessOfLossParams, x *graph.Node) (*graph.Node, error) {
	if x == nil {
		return nil, graph.ErrNilOperand
	}
	if err := validation.Struct(p); err != nil {
		return nil, fmt.Errorf("excess of loss %q: %w", name, err)
	}
	return graph.NewNode(name, &excessOfLossForwarder{params: p}, x.DefaultEdge("x")), nil
}

type excessOfLossForwarder struct {
	params ExcessOfLossParams
}

func (f *excessOfLossForwarder) Kind() string { return KindExcessOfLoss }

func (f *excessOfLossForwarder) OutputChannels() []string {
	return []string{ChannelGross, ChannelRecovery, ChannelReinstatementPremium}
}

func (f *excessOfLossForwarder) DefaultChannel() string { return ChannelGross }

func (f *excessOfLossForwarder) Parameters() map[string]float64 {
	return map[string]float64{
		"attachment":          f.params.Attachment,
		"width":               f.params.Width,
		"deductible":          f.params.Deductible,
		"rate_on_line":        f.params.RateOnLine,
		"reinstatements":      float64(f.params.Reinstatements),
		"free_reinstatements": float64(f.params.FreeReinstatements),
	}
}

// burn is the fraction of the layer limit consumed per occurrence, with the
// cumulative total capped at the initial limit plus reinstatements.
func (f *excessOfLossForwarder) burn(x *ndarray.Array) *ndarray.Array {
	p := f.params
	initRecovery := x.SubScalar(p.Attachment).MaximumScalar(0).MinimumScalar(p.Width)
	capped := initRecovery.DivScalar(p.Width).CumsumLast().Clip(0, float64(p.Reinstatements)+1)
	return capped.DiffLast(0)
}

func (f *excessOfLossForwarder) Forward(in map[string]*ndarray.Array) (map[string]*ndarray.Array, error) {
	x, ok := in["x"]
	if !ok || x == nil {
		return nil, fmt.Errorf("%w: %q", graph.ErrMissingChannel, "x")
	}
	p := f.params

	burn := f.burn(x)
	recovery := burn.MulScalar(p.Width * (1 - p.Deductible))
	premium := burn.CumsumLast().
		Clip(float64(p.FreeReinstatements), float64(p.Reinstatements)).
		DiffLast(float64(p.FreeReinstatements)).
		MulScalar(p.RateOnLine * p.Width)

	return map[string]*ndarray.Array{
		ChannelGross:                x,
		ChannelRecovery:             recovery,
		ChannelReinstatementPremium: premium,
	}, nil
}
