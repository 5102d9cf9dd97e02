// Package graph provides the core computation-graph entities: nodes, the
// channel-typed edges connecting them, and the forward-computation contract
// layers plug into. Constructing nodes never evaluates anything; the graph
// only records structure, and evaluation is owned by the execution backends.
// PRINCIPLES:
// - KISS: a node is an id, a forwarder, and an ordered list of input edges
// - SRP: structure only; ordering and evaluation live in plan and usecases
// - Append-only: edges may be added to a node, never removed or rewired
package graph

import (
	"fmt"
	"sync/atomic"
)

// Built-in node kinds. Domain layers contribute their own kinds through
// their Forwarder implementations.
const (
	KindInput    = "input"
	KindConstant = "constant"
	KindAdd      = "add"
	KindSubtract = "subtract"
	KindMultiply = "multiply"
	KindDivide   = "divide"
	KindNegate   = "negate"
)

// ChannelValue is the single output channel of inputs, constants, arithmetic
// combinators, and channel selectors.
const ChannelValue = "value"

// seqCounter assigns construction order. The ordinal doubles as the
// deterministic tie-break for scheduling and as the suffix of generated ids.
var seqCounter atomic.Uint64

// Edge is a directed input reference: it feeds the named output channel of
// an upstream node into one of this node's input channels. A derived-output
// handle (e.g. the "recovery" side of a layer) is just an edge selecting a
// non-default channel.
type Edge struct {
	From        *Node
	FromChannel string
	ToChannel   string
}

// Node is a vertex in the DAG. Identity (pointer), not structural equality
// of parameters, determines whether two expressions share computation.
type Node struct {
	id       string
	seq      uint64
	fwd      Forwarder
	inputs   []Edge
	explicit bool
}

// NewNode constructs a node over the given forwarder and input edges.
// When name is empty a unique id of the form "<kind>_<seq>" is generated.
func NewNode(name string, fwd Forwarder, inputs ...Edge) *Node {
	if fwd == nil {
		panic(ErrNilForwarder)
	}
	seq := seqCounter.Add(1)
	explicit := name != ""
	if !explicit {
		name = fmt.Sprintf("%s_%d", fwd.Kind(), seq)
	}
	return &Node{
		id:       name,
		seq:      seq,
		fwd:      fwd,
		inputs:   append([]Edge(nil), inputs...),
		explicit: explicit,
	}
}

// ID returns the node's identifier, unique within a resolved graph.
func (n *Node) ID() string { return n.id }

// Seq returns the construction ordinal used for deterministic tie-breaks.
func (n *Node) Seq() uint64 { return n.seq }

// Kind returns the forwarder's kind tag.
func (n *Node) Kind() string { return n.fwd.Kind() }

// Named reports whether the id was supplied explicitly rather than generated.
func (n *Node) Named() bool { return n.explicit }

// Inputs returns a copy of the node's ordered input edges.
func (n *Node) Inputs() []Edge {
	return append([]Edge(nil), n.inputs...)
}

// AddInput appends an edge to the node. Edges can be added but never removed;
// a graph made cyclic this way is rejected at resolution, not here.
func (n *Node) AddInput(e Edge) {
	if e.From == nil {
		panic(ErrNilOperand)
	}
	n.inputs = append(n.inputs, e)
}

// Forwarder returns the node's forward-computation implementation.
func (n *Node) Forwarder() Forwarder { return n.fwd }

// DefaultChannel returns the output channel consumed when this node is used
// as an arithmetic operand or a model output.
func (n *Node) DefaultChannel() string { return n.fwd.DefaultChannel() }

// DefaultEdge returns an edge feeding this node's default channel into the
// given input channel of a downstream node.
func (n *Node) DefaultEdge(toChannel string) Edge {
	return Edge{From: n, FromChannel: n.fwd.DefaultChannel(), ToChannel: toChannel}
}
