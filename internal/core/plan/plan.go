// Package plan resolves a requested set of output nodes into a deterministic
// execution plan: the dependency closure in topological order, with each
// task carrying exactly the dependency edges of its node.
// PRINCIPLES:
// - Validation before evaluation: cycles, unbound inputs, ambiguous names,
//   and channel-contract violations all fail here, so Compute is
//   all-or-nothing with respect to them
// - Determinism: ties between ready nodes break on construction order,
//   giving reproducible plans for the same graph
package plan

import (
	"fmt"

	"github.com/cbalona/reinsurance/internal/core/graph"
)

// Task is one schedulable unit of an execution plan. Deps lists the ids of
// the distinct upstream nodes this task consumes - exactly the dependency
// edges, no more and no fewer, so a parallel backend can run unrelated
// tasks concurrently.
type Task struct {
	ID   string
	Node *graph.Node
	Deps []string
}

// Plan is a total order over the dependency closure of the requested
// outputs: every task appears after all of its dependencies.
type Plan struct {
	Tasks []Task

	index map[string]int
}

// Len returns the number of tasks in the plan.
func (p *Plan) Len() int { return len(p.Tasks) }

// Task returns the task with the given id.
func (p *Plan) Task(id string) (Task, bool) {
	i, ok := p.index[id]
	if !ok {
		return Task{}, false
	}
	return p.Tasks[i], true
}

// Position returns a task's place in the total order.
func (p *Plan) Position(id string) (int, bool) {
	i, ok := p.index[id]
	return i, ok
}

// Resolve computes the execution plan for the given outputs. declaredInputs
// is the set of input nodes the enclosing model has bound; any reachable
// input node outside that set fails resolution.
func Resolve(outputs []*graph.Node, declaredInputs []*graph.Node) (*Plan, error) {
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}

	closure, err := dependencyClosure(outputs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*graph.Node, len(closure))
	for _, n := range closure {
		if prev, ok := byID[n.ID()]; ok && prev != n {
			return nil, fmt.Errorf("%w: %q", ErrAmbiguousName, n.ID())
		}
		byID[n.ID()] = n
	}

	declared := make(map[*graph.Node]bool, len(declaredInputs))
	for _, n := range declaredInputs {
		declared[n] = true
	}
	for _, n := range closure {
		if n.Kind() == graph.KindInput && !declared[n] {
			return nil, fmt.Errorf("%w: %q", ErrUnboundInput, n.ID())
		}
		if err := checkChannels(n); err != nil {
			return nil, err
		}
	}

	ordered := topoSort(closure)

	p := &Plan{
		Tasks: make([]Task, 0, len(ordered)),
		index: make(map[string]int, len(ordered)),
	}
	for _, n := range ordered {
		p.index[n.ID()] = len(p.Tasks)
		p.Tasks = append(p.Tasks, Task{ID: n.ID(), Node: n, Deps: depIDs(n)})
	}
	return p, nil
}

// dependencyClosure collects every node transitively reachable from the
// outputs through input edges. Cycles are reported the moment a node
// reappears while still on the active DFS path.
func dependencyClosure(outputs []*graph.Node) ([]*graph.Node, error) {
	const (
		white = 0 // unvisited
		gray  = 1 // on the active path
		black = 2 // fully explored
	)
	color := make(map[*graph.Node]int)
	var closure []*graph.Node

	var visit func(n *graph.Node) error
	visit = func(n *graph.Node) error {
		switch color[n] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("%w: involving node %q", ErrCycle, n.ID())
		}
		color[n] = gray
		for _, e := range n.Inputs() {
			if err := visit(e.From); err != nil {
				return err
			}
		}
		color[n] = black
		closure = append(closure, n)
		return nil
	}

	for _, out := range outputs {
		if err := visit(out); err != nil {
			return nil, err
		}
	}
	return closure, nil
}

// checkChannels verifies the static channel contract: every input edge must
// consume a channel its upstream forwarder declares.
func checkChannels(n *graph.Node) error {
	for _, e := range n.Inputs() {
		produced := e.From.Forwarder().OutputChannels()
		found := false
		for _, ch := range produced {
			if ch == e.FromChannel {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: node %q consumes %q of %q (produces %v)",
				ErrUnknownChannel, n.ID(), e.FromChannel, e.From.ID(), produced)
		}
	}
	return nil
}

// topoSort orders the closure with Kahn's algorithm. When several nodes are
// ready at the same step the one constructed first is scheduled first.
func topoSort(closure []*graph.Node) []*graph.Node {
	inClosure := make(map[*graph.Node]bool, len(closure))
	for _, n := range closure {
		inClosure[n] = true
	}

	indegree := make(map[*graph.Node]int, len(closure))
	dependents := make(map[*graph.Node][]*graph.Node, len(closure))
	for _, n := range closure {
		deps := distinctDeps(n)
		indegree[n] = len(deps)
		for _, d := range deps {
			dependents[d] = append(dependents[d], n)
		}
	}

	var ready []*graph.Node
	for _, n := range closure {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	ordered := make([]*graph.Node, 0, len(closure))
	for len(ready) > 0 {
		// First-defined, first-scheduled: take the lowest construction ordinal.
		minIdx := 0
		for i := 1; i < len(ready); i++ {
			if ready[i].Seq() < ready[minIdx].Seq() {
				minIdx = i
			}
		}
		n := ready[minIdx]
		ready = append(ready[:minIdx], ready[minIdx+1:]...)
		ordered = append(ordered, n)

		for _, dep := range dependents[n] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	return ordered
}

// distinctDeps returns each upstream node once, in first-edge order, even
// when several edges reference it (e.g. x + x).
func distinctDeps(n *graph.Node) []*graph.Node {
	seen := make(map[*graph.Node]bool)
	var deps []*graph.Node
	for _, e := range n.Inputs() {
		if !seen[e.From] {
			seen[e.From] = true
			deps = append(deps, e.From)
		}
	}
	return deps
}

// depIDs returns the ids of a node's distinct dependencies.
func depIDs(n *graph.Node) []string {
	deps := distinctDeps(n)
	ids := make([]string, len(deps))
	for i, d := range deps {
		ids[i] = d.ID()
	}
	return ids
}
