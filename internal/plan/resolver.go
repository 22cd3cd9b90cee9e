package plan

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ocrforge/tesstrain/internal/artifact"
)

// BuildPlan is an ordered sequence of nodes to rebuild. Every dependency
// appears before its dependents, each node at most once.
type BuildPlan []*artifact.Node

// Names returns the node names in plan order, mostly for logs and tests.
func (p BuildPlan) Names() []string {
	names := make([]string, len(p))
	for i, n := range p {
		names[i] = n.Name
	}
	return names
}

// Planner classifies nodes as stale and orders them for execution. The
// filesystem is only touched through Stat, so tests can substitute a fake
// clock.
type Planner struct {
	// Stat inspects one path. Defaults to os.Stat.
	Stat func(string) (fs.FileInfo, error)

	// Force marks every reachable node stale, ignoring timestamps.
	Force bool
}

// New creates a Planner backed by the real filesystem.
func New() *Planner {
	return &Planner{Stat: os.Stat}
}

// Plan walks the dependency graph from target and returns the stale nodes in
// dependency order. Ties among independent nodes are broken by the graph's
// declaration order, so the plan is deterministic. Immediately after a fully
// successful build, Plan returns an empty plan.
func (p *Planner) Plan(g *artifact.Graph, target string) (BuildPlan, error) {
	targetNode, ok := g.Node(target)
	if !ok {
		return nil, fmt.Errorf("target node not found: %s", target)
	}

	needed, err := reachable(g, targetNode)
	if err != nil {
		return nil, err
	}

	ordered, err := topoOrder(g, needed)
	if err != nil {
		return nil, err
	}

	var plan BuildPlan
	stale := make(map[string]bool, len(ordered))
	for _, n := range ordered {
		isStale, err := p.isStale(g, n, stale)
		if err != nil {
			return nil, err
		}
		if isStale {
			stale[n.Name] = true
			plan = append(plan, n)
		}
	}
	return plan, nil
}

// reachable collects the target and its transitive dependencies.
func reachable(g *artifact.Graph, target *artifact.Node) (map[string]bool, error) {
	needed := make(map[string]bool)
	var visit func(n *artifact.Node) error
	visit = func(n *artifact.Node) error {
		if needed[n.Name] {
			return nil
		}
		needed[n.Name] = true
		deps, err := g.Dependencies(n.Name)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(target); err != nil {
		return nil, err
	}
	return needed, nil
}

// topoOrder orders the needed nodes so every dependency precedes its
// dependents, breaking ties by declaration order (Kahn's algorithm over the
// declaration-ordered node slice).
func topoOrder(g *artifact.Graph, needed map[string]bool) ([]*artifact.Node, error) {
	indegree := make(map[string]int, len(needed))
	for _, n := range g.Nodes() {
		if !needed[n.Name] {
			continue
		}
		for _, dep := range n.Deps {
			if needed[dep] {
				indegree[n.Name]++
			}
		}
	}

	placed := make(map[string]bool, len(needed))
	ordered := make([]*artifact.Node, 0, len(needed))
	for len(ordered) < len(needed) {
		progressed := false
		for _, n := range g.Nodes() {
			if !needed[n.Name] || placed[n.Name] || indegree[n.Name] > 0 {
				continue
			}
			placed[n.Name] = true
			ordered = append(ordered, n)
			progressed = true
			for _, other := range g.Nodes() {
				if !needed[other.Name] || placed[other.Name] {
					continue
				}
				for _, dep := range other.Deps {
					if dep == n.Name {
						indegree[other.Name]--
					}
				}
			}
		}
		if !progressed {
			return nil, fmt.Errorf("dependency graph is not acyclic")
		}
	}
	return ordered, nil
}

// isStale classifies one node. A node is stale if forced, if any output is
// missing, if any input or dependency output is newer than its oldest
// output, or if any dependency is itself stale.
func (p *Planner) isStale(g *artifact.Graph, n *artifact.Node, stale map[string]bool) (bool, error) {
	if p.Force {
		return true, nil
	}
	for _, dep := range n.Deps {
		if stale[dep] {
			return true, nil
		}
	}

	oldestOutput, allExist := p.oldestMtime(n.Outputs)
	if !allExist {
		return true, nil
	}

	inputs := append([]string{}, n.Inputs...)
	deps, err := g.Dependencies(n.Name)
	if err != nil {
		return false, err
	}
	for _, dep := range deps {
		inputs = append(inputs, dep.Outputs...)
	}
	for _, input := range inputs {
		info, err := p.Stat(input)
		if err != nil {
			// A missing input cannot prove freshness; rebuild and let
			// execution surface the real problem.
			return true, nil
		}
		if info.ModTime().After(oldestOutput) {
			return true, nil
		}
	}
	return false, nil
}

// oldestMtime returns the oldest modification time among paths, and whether
// all of them exist.
func (p *Planner) oldestMtime(paths []string) (time.Time, bool) {
	var oldest time.Time
	for i, path := range paths {
		info, err := p.Stat(path)
		if err != nil {
			return time.Time{}, false
		}
		if i == 0 || info.ModTime().Before(oldest) {
			oldest = info.ModTime()
		}
	}
	return oldest, len(paths) > 0
}
