package artifact

import (
	"fmt"
)

// Graph is the declaration-ordered collection of pipeline nodes. Declaration
// order is meaningful: the builder appends producers before consumers, and
// the planner uses it to break ties deterministically.
type Graph struct {
	nodes  []*Node
	index  map[string]*Node
	target string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]*Node)}
}

// Add appends a node to the graph. Node names must be unique.
func (g *Graph) Add(n *Node) error {
	if _, exists := g.index[n.Name]; exists {
		return fmt.Errorf("duplicate node name %q", n.Name)
	}
	g.nodes = append(g.nodes, n)
	g.index[n.Name] = n
	return nil
}

// Node returns the node with the given name, if present.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.index[name]
	return n, ok
}

// Nodes returns all nodes in declaration order. The slice is shared; callers
// must treat it as read-only.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Target returns the name of the final artifact node.
func (g *Graph) Target() string {
	return g.target
}

// SetTarget records the final artifact node. The node must exist.
func (g *Graph) SetTarget(name string) error {
	if _, ok := g.index[name]; !ok {
		return fmt.Errorf("target node not found: %s", name)
	}
	g.target = name
	return nil
}

// Validate checks that every declared dependency exists and that the
// dependency edges form a DAG.
func (g *Graph) Validate() error {
	for _, n := range g.nodes {
		for _, dep := range n.Deps {
			if dep == n.Name {
				return fmt.Errorf("self-referential dependency not allowed: %s -> %s", n.Name, n.Name)
			}
			if _, ok := g.index[dep]; !ok {
				return fmt.Errorf("node %q depends on unknown node %q", n.Name, dep)
			}
		}
	}
	return g.detectCycles()
}

// detectCycles checks the graph for cycles. It returns a non-nil error if a
// cycle is found, naming the first node involved in the detected cycle.
func (g *Graph) detectCycles() error {
	// Classic depth-first search with three sets of nodes:
	// permanent: nodes that have been fully visited and are not part of a cycle.
	// temporary: nodes currently in the recursion stack for the current traversal.
	// unvisited: all other nodes.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if permanent[n.Name] {
			return nil
		}
		if temporary[n.Name] {
			// A node already in the recursion stack means a cycle.
			return fmt.Errorf("cycle detected involving node '%s'", n.Name)
		}

		temporary[n.Name] = true
		for _, dep := range n.Deps {
			if err := visit(g.index[dep]); err != nil {
				return err
			}
		}
		delete(temporary, n.Name)
		permanent[n.Name] = true
		return nil
	}

	for _, n := range g.nodes {
		if !permanent[n.Name] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dependencies returns the direct dependency nodes of the named node, in the
// order they were declared on it.
func (g *Graph) Dependencies(name string) ([]*Node, error) {
	n, ok := g.index[name]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", name)
	}
	deps := make([]*Node, 0, len(n.Deps))
	for _, dep := range n.Deps {
		d, ok := g.index[dep]
		if !ok {
			return nil, fmt.Errorf("node %q depends on unknown node %q", name, dep)
		}
		deps = append(deps, d)
	}
	return deps, nil
}
