// Package program loads reinsurance program definitions from HCL files and
// builds the corresponding computation graph. A program declares inputs,
// layers applied to them, and outputs composed from node channels:
//
//	input "gross" {}
//
//	layer "xl" {
//	  type           = "excess_of_loss"
//	  source         = "gross"
//	  attachment     = 25
//	  width          = 25
//	  rate_on_line   = 0.1
//	  reinstatements = 2
//	}
//
//	output "net" {
//	  base   = "gross"
//	  deduct = ["xl.recovery", "xl.reinstatement_premium"]
//	}
//
// References are resolved in source order: a block may only name blocks
// defined before it, outputs included, so a layer can attach to a previously
// composed output (e.g. the retained position after a quota share).
package program

import (
	"fmt"
	"strings"

	"github.com/cbalona/reinsurance/internal/app/usecases"
	"github.com/cbalona/reinsurance/internal/core/graph"
	"github.com/cbalona/reinsurance/internal/core/layer"
	"github.com/cbalona/reinsurance/internal/core/ndarray"
)

// Program is a loaded reinsurance structure: declared inputs, requested
// outputs, and any default input values carried in the source files.
type Program struct {
	Inputs   []*graph.Node
	Outputs  []*graph.Node
	Defaults map[string]*ndarray.Array

	nodes map[string]*graph.Node
}

// Node returns a named input or layer node of the program.
func (p *Program) Node(name string) (*graph.Node, bool) {
	n, ok := p.nodes[name]
	return n, ok
}

// Model resolves the program into a ready-to-compute model.
func (p *Program) Model(opts ...usecases.ModelOption) (*usecases.Model, error) {
	return usecases.NewModel(p.Inputs, p.Outputs, opts...)
}

// define registers a named node, rejecting redefinitions.
func (p *Program) define(name string, n *graph.Node) error {
	if _, exists := p.nodes[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	p.nodes[name] = n
	return nil
}

// resolveRef resolves "name" to a node's default channel or "name.channel"
// to a selector over one of its side channels.
func (p *Program) resolveRef(ref string) (*graph.Node, error) {
	name, channel, hasChannel := strings.Cut(ref, ".")
	n, ok := p.nodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReference, name)
	}
	if !hasChannel {
		return n, nil
	}
	for _, ch := range n.Forwarder().OutputChannels() {
		if ch == channel {
			return graph.Select("", channel, n, channel), nil
		}
	}
	return nil, fmt.Errorf("%w: %q has no channel %q", ErrUnknownChannel, name, channel)
}

// buildLayer constructs the node for a layer block.
func (p *Program) buildLayer(name string, b *layerBlock) (*graph.Node, error) {
	src, err := p.resolveRef(b.Source)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}

	switch b.Type {
	case layer.KindQuotaShare:
		if b.Cession == nil {
			return nil, fmt.Errorf("layer %q: %w: cession", name, ErrMissingParam)
		}
		params := layer.QuotaShareParams{Cession: *b.Cession}
		if b.Commission != nil {
			params.Commission = *b.Commission
		}
		return layer.QuotaShare(name, params, src)

	case layer.KindExcessOfLoss:
		if b.Attachment == nil {
			return nil, fmt.Errorf("layer %q: %w: attachment", name, ErrMissingParam)
		}
		if b.Width == nil {
			return nil, fmt.Errorf("layer %q: %w: width", name, ErrMissingParam)
		}
		params := layer.ExcessOfLossParams{Attachment: *b.Attachment, Width: *b.Width}
		if b.Deductible != nil {
			params.Deductible = *b.Deductible
		}
		if b.RateOnLine != nil {
			params.RateOnLine = *b.RateOnLine
		}
		if b.Reinstatements != nil {
			params.Reinstatements = *b.Reinstatements
		}
		if b.FreeReinstatements != nil {
			params.FreeReinstatements = *b.FreeReinstatements
		}
		return layer.ExcessOfLoss(name, params, src)

	default:
		return nil, fmt.Errorf("layer %q: %w: %q", name, ErrUnknownLayerType, b.Type)
	}
}

// buildOutput composes base - sum(deduct) + sum(add) and names the result.
func (p *Program) buildOutput(name string, b *outputBlock) (*graph.Node, error) {
	cur, err := p.resolveRef(b.Base)
	if err != nil {
		return nil, fmt.Errorf("output %q: %w", name, err)
	}
	for _, ref := range b.Deduct {
		n, err := p.resolveRef(ref)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", name, err)
		}
		cur = cur.Sub(n)
	}
	for _, ref := range b.Add {
		n, err := p.resolveRef(ref)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", name, err)
		}
		cur = cur.Add(n)
	}
	// Wrap in a named identity node so results carry the output's name.
	return graph.Select(name, "output", cur, cur.DefaultChannel()), nil
}
