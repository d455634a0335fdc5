package pipeline

import (
	"context"
	"strings"
)

// StepFunc computes a partial update from the accumulated state.
// It must not modify the state it receives.
type StepFunc func(ctx context.Context, state State) (Update, error)

// Node declares a step and the steps it depends on
type Node struct {
	Name      string
	DependsOn []string
	// When is an optional CEL guard; the step is skipped when it is false
	When string
	Run  StepFunc
}

// Edge is a (from, to) dependency edge
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a validated, immutable step topology
type Graph struct {
	nodes    []Node
	index    map[string]int
	levels   [][]string
	start    string
	terminal string
}

// NewGraph validates the nodes and computes their execution levels.
// The graph must have exactly one start step, exactly one terminal step
// and no cycles.
func NewGraph(nodes ...Node) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, invalidGraph("graph has no steps")
	}

	g := &Graph{
		nodes: make([]Node, len(nodes)),
		index: make(map[string]int, len(nodes)),
	}

	for i, n := range nodes {
		if n.Name == "" {
			return nil, invalidGraph("step %d has no name", i)
		}
		if n.Run == nil {
			return nil, invalidGraph("step %q has no function", n.Name)
		}
		if _, dup := g.index[n.Name]; dup {
			return nil, invalidGraph("duplicate step %q", n.Name)
		}
		g.index[n.Name] = i

		n.DependsOn = append([]string(nil), n.DependsOn...)
		g.nodes[i] = n
	}

	for _, n := range g.nodes {
		seen := make(map[string]bool, len(n.DependsOn))
		for _, dep := range n.DependsOn {
			if dep == n.Name {
				return nil, invalidGraph("step %q depends on itself", n.Name)
			}
			if _, ok := g.index[dep]; !ok {
				return nil, invalidGraph("step %q depends on unknown step %q", n.Name, dep)
			}
			if seen[dep] {
				return nil, invalidGraph("step %q lists dependency %q twice", n.Name, dep)
			}
			seen[dep] = true
		}
	}

	if err := g.computeLevels(); err != nil {
		return nil, err
	}

	if err := g.findEndpoints(); err != nil {
		return nil, err
	}

	return g, nil
}

// computeLevels groups steps so that every dependency of a step sits in an
// earlier level. Within a level steps keep declaration order.
func (g *Graph) computeLevels() error {
	remaining := make([]int, len(g.nodes))
	dependents := make([][]int, len(g.nodes))
	for i, n := range g.nodes {
		remaining[i] = len(n.DependsOn)
		for _, dep := range n.DependsOn {
			d := g.index[dep]
			dependents[d] = append(dependents[d], i)
		}
	}

	var current []int
	for i := range g.nodes {
		if remaining[i] == 0 {
			current = append(current, i)
		}
	}

	placed := 0
	for len(current) > 0 {
		level := make([]string, len(current))
		ready := make([]bool, len(g.nodes))
		for j, i := range current {
			level[j] = g.nodes[i].Name
			for _, d := range dependents[i] {
				remaining[d]--
				if remaining[d] == 0 {
					ready[d] = true
				}
			}
		}
		g.levels = append(g.levels, level)
		placed += len(current)

		current = current[:0:0]
		for i, ok := range ready {
			if ok {
				current = append(current, i)
			}
		}
	}

	if placed != len(g.nodes) {
		var cyclic []string
		for i, n := range g.nodes {
			if remaining[i] > 0 {
				cyclic = append(cyclic, n.Name)
			}
		}
		return invalidGraph("cycle between steps %s", strings.Join(cyclic, ", "))
	}

	return nil
}

// findEndpoints enforces a single start and a single terminal step
func (g *Graph) findEndpoints() error {
	hasDependents := make(map[string]bool, len(g.nodes))
	var starts []string
	for _, n := range g.nodes {
		if len(n.DependsOn) == 0 {
			starts = append(starts, n.Name)
		}
		for _, dep := range n.DependsOn {
			hasDependents[dep] = true
		}
	}

	var terminals []string
	for _, n := range g.nodes {
		if !hasDependents[n.Name] {
			terminals = append(terminals, n.Name)
		}
	}

	if len(starts) != 1 {
		return invalidGraph("want exactly one start step, got %d (%s)", len(starts), strings.Join(starts, ", "))
	}
	if len(terminals) != 1 {
		return invalidGraph("want exactly one terminal step, got %d (%s)", len(terminals), strings.Join(terminals, ", "))
	}

	g.start = starts[0]
	g.terminal = terminals[0]
	return nil
}

// Nodes returns the declared steps in declaration order
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		n.DependsOn = append([]string(nil), n.DependsOn...)
		out[i] = n
	}
	return out
}

// Node looks up a step by name
func (g *Graph) Node(name string) (Node, bool) {
	i, ok := g.index[name]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Edges returns the dependency edges, ordered by dependent step then by
// dependency declaration order
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, n := range g.nodes {
		for _, dep := range n.DependsOn {
			edges = append(edges, Edge{From: dep, To: n.Name})
		}
	}
	return edges
}

// Levels returns the execution levels. Steps in one level are independent.
func (g *Graph) Levels() [][]string {
	out := make([][]string, len(g.levels))
	for i, level := range g.levels {
		out[i] = append([]string(nil), level...)
	}
	return out
}

// Order returns the flattened topological order
func (g *Graph) Order() []string {
	var order []string
	for _, level := range g.levels {
		order = append(order, level...)
	}
	return order
}

// Start returns the single step without dependencies
func (g *Graph) Start() string {
	return g.start
}

// Terminal returns the single step nothing depends on
func (g *Graph) Terminal() string {
	return g.terminal
}
