package graph

import (
	"fmt"
	"sort"
	"strings"
)

// NodeView is the introspection projection of a single node.
type NodeView struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// EdgeView is the introspection projection of a single dependency edge.
type EdgeView struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Channel string `json:"channel"`
}

// GraphView is a pure read projection of a node closure, suitable for
// external rendering. Producing a view has no effect on evaluation.
type GraphView struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// View walks the dependency closure of the given roots and returns its
// node-and-edge projection. Nodes are listed in construction order.
func View(roots ...*Node) GraphView {
	seen := make(map[*Node]bool)
	var nodes []*Node

	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		for _, e := range n.inputs {
			walk(e.From)
		}
		nodes = append(nodes, n)
	}
	for _, r := range roots {
		walk(r)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].seq < nodes[j].seq })

	view := GraphView{}
	for _, n := range nodes {
		view.Nodes = append(view.Nodes, NodeView{ID: n.id, Kind: n.Kind()})
		for _, e := range n.inputs {
			view.Edges = append(view.Edges, EdgeView{From: e.From.id, To: n.id, Channel: e.FromChannel})
		}
	}
	return view
}

// DOT renders the view in Graphviz dot syntax for external tooling.
func (v GraphView) DOT() string {
	var b strings.Builder
	b.WriteString("digraph model {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, n := range v.Nodes {
		fmt.Fprintf(&b, "  %q [label=%q];\n", n.ID, n.ID+"\n("+n.Kind+")")
	}
	for _, e := range v.Edges {
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", e.From, e.To, e.Channel)
	}
	b.WriteString("}\n")
	return b.String()
}
