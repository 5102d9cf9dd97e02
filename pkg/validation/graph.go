package validation

import (
	"errors"
	"fmt"

	coregraph "github.com/cbalona/reinsurance/internal/core/graph"
)

// Structural errors for externally-assembled graph views.
var (
	ErrDuplicateNodeID = errors.New("duplicate node id")
	ErrUnknownEndpoint = errors.New("edge references unknown node")
	ErrCyclicView      = errors.New("cyclic dependency detected")
)

// ViewValidationOptions controls optional validation checks.
type ViewValidationOptions struct {
	// CheckCycles enables detection of directed cycles.
	CheckCycles bool
}

// ValidateView performs structural validation on a graph projection. The
// resolver repeats these checks for graphs built through the node API; this
// entry point exists for graphs assembled from external definitions (HCL
// programs, wire envelopes) before they reach a Model.
func ValidateView(v coregraph.GraphView, opts ...ViewValidationOptions) error {
	ids := make(map[string]struct{}, len(v.Nodes))
	for _, n := range v.Nodes {
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateNodeID, n.ID)
		}
		ids[n.ID] = struct{}{}
	}

	for _, e := range v.Edges {
		if _, ok := ids[e.From]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownEndpoint, e.From)
		}
		if _, ok := ids[e.To]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownEndpoint, e.To)
		}
	}

	var cfg ViewValidationOptions
	if len(opts) > 0 {
		cfg = opts[0]
	}
	if cfg.CheckCycles && hasCycle(v) {
		return ErrCyclicView
	}
	return nil
}

// hasCycle detects any cycle in the view using DFS with coloring.
func hasCycle(v coregraph.GraphView) bool {
	const (
		white = 0 // unvisited
		gray  = 1 // visiting
		black = 2 // visited
	)
	color := make(map[string]int, len(v.Nodes))
	adj := make(map[string][]string, len(v.Nodes))
	for _, e := range v.Edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	var dfs func(string) bool
	dfs = func(u string) bool {
		color[u] = gray
		for _, w := range adj[u] {
			if color[w] == gray {
				return true // back-edge
			}
			if color[w] == white {
				if dfs(w) {
					return true
				}
			}
		}
		color[u] = black
		return false
	}
	for _, n := range v.Nodes {
		if color[n.ID] == white {
			if dfs(n.ID) {
				return true
			}
		}
	}
	return false
}
