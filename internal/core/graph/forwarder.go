package graph

import (
	"fmt"

	"github.com/cbalona/reinsurance/internal/core/ndarray"
)

// Forwarder is the per-layer forward-computation contract. Implementations
// must be deterministic and side-effect free: backends may invoke them
// concurrently for independent nodes.
// Forward receives already-materialized arrays keyed by the node's input
// channel names and returns the arrays it produces keyed by output channel.
type Forwarder interface {
	Kind() string
	OutputChannels() []string
	DefaultChannel() string
	Forward(in map[string]*ndarray.Array) (map[string]*ndarray.Array, error)
}

// Parameterized is implemented by forwarders whose configuration should
// travel with a serialized plan (see pkg/serialization).
type Parameterized interface {
	Parameters() map[string]float64
}

// channelInput pulls a required channel from the materialized input map.
func channelInput(in map[string]*ndarray.Array, name string) (*ndarray.Array, error) {
	v, ok := in[name]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingChannel, name)
	}
	return v, nil
}

// inputForwarder marks a model entry point. It is never evaluated: backends
// seed input nodes directly from the values supplied to Compute.
type inputForwarder struct{}

func (inputForwarder) Kind() string              { return KindInput }
func (inputForwarder) OutputChannels() []string  { return []string{ChannelValue} }
func (inputForwarder) DefaultChannel() string    { return ChannelValue }
func (inputForwarder) Forward(map[string]*ndarray.Array) (map[string]*ndarray.Array, error) {
	return nil, ErrInputForward
}

// Input creates a named entry-point node. Values are bound per Compute call,
// matched by the node id.
func Input(name string) *Node {
	return NewNode(name, inputForwarder{})
}

// constantForwarder wraps a raw array captured at construction time.
type constantForwarder struct {
	value *ndarray.Array
}

func (constantForwarder) Kind() string             { return KindConstant }
func (constantForwarder) OutputChannels() []string { return []string{ChannelValue} }
func (constantForwarder) DefaultChannel() string   { return ChannelValue }
func (f constantForwarder) Forward(map[string]*ndarray.Array) (map[string]*ndarray.Array, error) {
	return map[string]*ndarray.Array{ChannelValue: f.value}, nil
}

// Constant creates a leaf node holding a fixed array value.
func Constant(v *ndarray.Array) *Node {
	return NewNode("", constantForwarder{value: v})
}

// ConstantScalar creates a leaf node holding a fixed scalar value.
func ConstantScalar(v float64) *Node {
	return Constant(ndarray.Scalar(v))
}

// binaryForwarder is the arithmetic-combinator forward computation. Its two
// input channels are "lhs" and "rhs" in operand order.
type binaryForwarder struct {
	kind string
	op   func(a, b *ndarray.Array) (*ndarray.Array, error)
}

func (f binaryForwarder) Kind() string             { return f.kind }
func (binaryForwarder) OutputChannels() []string   { return []string{ChannelValue} }
func (binaryForwarder) DefaultChannel() string     { return ChannelValue }
func (f binaryForwarder) Forward(in map[string]*ndarray.Array) (map[string]*ndarray.Array, error) {
	lhs, err := channelInput(in, "lhs")
	if err != nil {
		return nil, err
	}
	rhs, err := channelInput(in, "rhs")
	if err != nil {
		return nil, err
	}
	out, err := f.op(lhs, rhs)
	if err != nil {
		return nil, err
	}
	return map[string]*ndarray.Array{ChannelValue: out}, nil
}

// negateForwarder is the unary negation combinator.
type negateForwarder struct{}

func (negateForwarder) Kind() string             { return KindNegate }
func (negateForwarder) OutputChannels() []string { return []string{ChannelValue} }
func (negateForwarder) DefaultChannel() string   { return ChannelValue }
func (negateForwarder) Forward(in map[string]*ndarray.Array) (map[string]*ndarray.Array, error) {
	x, err := channelInput(in, "x")
	if err != nil {
		return nil, err
	}
	return map[string]*ndarray.Array{ChannelValue: x.Neg()}, nil
}

// selectForwarder projects a single named channel of its upstream node,
// giving derived-output handles (Recovery, Commission, ...) their identity
// forward computation. The channel wiring itself lives on the input edge.
type selectForwarder struct {
	kind string
}

func (f selectForwarder) Kind() string            { return f.kind }
func (selectForwarder) OutputChannels() []string  { return []string{ChannelValue} }
func (selectForwarder) DefaultChannel() string    { return ChannelValue }
func (selectForwarder) Forward(in map[string]*ndarray.Array) (map[string]*ndarray.Array, error) {
	x, err := channelInput(in, "x")
	if err != nil {
		return nil, err
	}
	return map[string]*ndarray.Array{ChannelValue: x}, nil
}

// Select creates a derived-output node exposing the named channel of an
// upstream node as its own default channel. kind tags the selector for plans
// and visualization (e.g. "recovery").
func Select(name, kind string, upstream *Node, channel string) *Node {
	if upstream == nil {
		panic(ErrNilOperand)
	}
	return NewNode(name, selectForwarder{kind: kind},
		Edge{From: upstream, FromChannel: channel, ToChannel: "x"})
}
