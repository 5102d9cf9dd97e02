package serialization

import (
	"fmt"
	"sort"

	"github.com/cbalona/reinsurance/internal/core/graph"
	"github.com/cbalona/reinsurance/internal/core/ndarray"
)

// ArrayPayload is the wire form of an n-dimensional array: shape plus the
// row-major flattened values. It round-trips through both JSON and
// MessagePack codecs.
type ArrayPayload struct {
	Shape []int     `json:"shape" msgpack:"shape"`
	Data  []float64 `json:"data" msgpack:"data"`
}

// NewArrayPayload captures an array for transport.
func NewArrayPayload(a *ndarray.Array) ArrayPayload {
	return ArrayPayload{Shape: a.Shape(), Data: a.Data()}
}

// Array materializes the payload back into an array, validating the shape
// against the data length.
func (p ArrayPayload) Array() (*ndarray.Array, error) {
	a, err := ndarray.New(p.Shape, p.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid array payload: %w", err)
	}
	return a, nil
}

// EdgeEnvelope is the wire form of one input edge of a node.
type EdgeEnvelope struct {
	From        string `json:"from" msgpack:"from"`
	FromChannel string `json:"from_channel" msgpack:"from_channel"`
	ToChannel   string `json:"to_channel" msgpack:"to_channel"`
}

// NodeEnvelope is the wire form of a graph node: identity, kind, numeric
// parameters for parameterized layers, and input edges.
type NodeEnvelope struct {
	ID     string             `json:"id" msgpack:"id"`
	Kind   string             `json:"kind" msgpack:"kind"`
	Params map[string]float64 `json:"params,omitempty" msgpack:"params,omitempty"`
	Edges  []EdgeEnvelope     `json:"edges,omitempty" msgpack:"edges,omitempty"`
}

// GraphEnvelope is the wire form of a resolved graph: its nodes in
// topological order plus the ids of declared inputs and requested outputs.
// It describes structure for inspection and rendering; it is not sufficient
// to re-execute constant or input values.
type GraphEnvelope struct {
	Nodes   []NodeEnvelope `json:"nodes" msgpack:"nodes"`
	Inputs  []string       `json:"inputs" msgpack:"inputs"`
	Outputs []string       `json:"outputs" msgpack:"outputs"`
}

// NewGraphEnvelope captures the nodes reachable from outputs in construction
// order, with parameters taken from forwarders that expose them.
func NewGraphEnvelope(inputs, outputs []*graph.Node) GraphEnvelope {
	nodes := collectNodes(outputs)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Seq() < nodes[j].Seq() })

	env := GraphEnvelope{
		Nodes:   make([]NodeEnvelope, 0, len(nodes)),
		Inputs:  make([]string, 0, len(inputs)),
		Outputs: make([]string, 0, len(outputs)),
	}
	for _, n := range nodes {
		ne := NodeEnvelope{ID: n.ID(), Kind: n.Kind()}
		if p, ok := n.Forwarder().(graph.Parameterized); ok {
			ne.Params = p.Parameters()
		}
		for _, e := range n.Inputs() {
			ne.Edges = append(ne.Edges, EdgeEnvelope{
				From:        e.From.ID(),
				FromChannel: e.FromChannel,
				ToChannel:   e.ToChannel,
			})
		}
		env.Nodes = append(env.Nodes, ne)
	}
	for _, n := range inputs {
		env.Inputs = append(env.Inputs, n.ID())
	}
	for _, n := range outputs {
		env.Outputs = append(env.Outputs, n.ID())
	}
	return env
}

// collectNodes walks the closure of the outputs depth-first.
func collectNodes(outputs []*graph.Node) []*graph.Node {
	seen := make(map[*graph.Node]bool)
	var nodes []*graph.Node
	var visit func(n *graph.Node)
	visit = func(n *graph.Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, e := range n.Inputs() {
			visit(e.From)
		}
		nodes = append(nodes, n)
	}
	for _, out := range outputs {
		visit(out)
	}
	return nodes
}
