package plan

import (
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrforge/tesstrain/internal/artifact"
)

// fakeInfo is a minimal fs.FileInfo carrying only a modification time.
type fakeInfo struct {
	name string
	mod  time.Time
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeInfo) ModTime() time.Time { return f.mod }
func (f fakeInfo) IsDir() bool        { return false }
func (f fakeInfo) Sys() any           { return nil }

// fakeFS maps paths to mtimes; absent paths behave as missing files.
type fakeFS map[string]time.Time

func (f fakeFS) Stat(path string) (fs.FileInfo, error) {
	mod, ok := f[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return fakeInfo{name: path, mod: mod}, nil
}

func newPlanner(f fakeFS) *Planner {
	return &Planner{Stat: f.Stat}
}

// chainGraph builds render -> extract -> combine with one input and one
// output file each.
func chainGraph(t *testing.T) *artifact.Graph {
	t.Helper()
	g := artifact.NewGraph()
	require.NoError(t, g.Add(&artifact.Node{
		Name:    "render",
		Outputs: []string{"render.out"},
		Inputs:  []string{"corpus.txt"},
	}))
	require.NoError(t, g.Add(&artifact.Node{
		Name:    "extract",
		Outputs: []string{"extract.out"},
		Deps:    []string{"render"},
	}))
	require.NoError(t, g.Add(&artifact.Node{
		Name:    "combine",
		Outputs: []string{"combine.out"},
		Deps:    []string{"extract"},
	}))
	require.NoError(t, g.Validate())
	return g
}

func TestPlanColdBuild(t *testing.T) {
	g := chainGraph(t)
	fsys := fakeFS{"corpus.txt": time.Unix(100, 0)}

	p, err := newPlanner(fsys).Plan(g, "combine")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff([]string{"render", "extract", "combine"}, p.Names()))
}

func TestPlanFreshBuildIsEmpty(t *testing.T) {
	g := chainGraph(t)
	fsys := fakeFS{
		"corpus.txt":  time.Unix(100, 0),
		"render.out":  time.Unix(200, 0),
		"extract.out": time.Unix(300, 0),
		"combine.out": time.Unix(400, 0),
	}

	p, err := newPlanner(fsys).Plan(g, "combine")
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestPlanInputNewerThanOutput(t *testing.T) {
	g := chainGraph(t)
	// The corpus was edited after the whole chain was built: everything
	// downstream of it rebuilds.
	fsys := fakeFS{
		"corpus.txt":  time.Unix(500, 0),
		"render.out":  time.Unix(200, 0),
		"extract.out": time.Unix(300, 0),
		"combine.out": time.Unix(400, 0),
	}

	p, err := newPlanner(fsys).Plan(g, "combine")
	require.NoError(t, err)
	assert.Equal(t, []string{"render", "extract", "combine"}, p.Names())
}

func TestPlanMidChainStaleness(t *testing.T) {
	g := chainGraph(t)
	// Only the middle output is missing; its dependency stays fresh but the
	// dependent rebuilds through propagation.
	fsys := fakeFS{
		"corpus.txt":  time.Unix(100, 0),
		"render.out":  time.Unix(200, 0),
		"combine.out": time.Unix(400, 0),
	}

	p, err := newPlanner(fsys).Plan(g, "combine")
	require.NoError(t, err)
	assert.Equal(t, []string{"extract", "combine"}, p.Names())
}

func TestPlanForce(t *testing.T) {
	g := chainGraph(t)
	fsys := fakeFS{
		"corpus.txt":  time.Unix(100, 0),
		"render.out":  time.Unix(200, 0),
		"extract.out": time.Unix(300, 0),
		"combine.out": time.Unix(400, 0),
	}

	planner := newPlanner(fsys)
	planner.Force = true
	p, err := planner.Plan(g, "combine")
	require.NoError(t, err)
	assert.Equal(t, []string{"render", "extract", "combine"}, p.Names())
}

func TestPlanIntermediateTarget(t *testing.T) {
	g := chainGraph(t)
	fsys := fakeFS{"corpus.txt": time.Unix(100, 0)}

	p, err := newPlanner(fsys).Plan(g, "extract")
	require.NoError(t, err)
	// Nodes outside the target's transitive closure never appear.
	assert.Equal(t, []string{"render", "extract"}, p.Names())
}

func TestPlanMissingInputForcesRebuild(t *testing.T) {
	g := chainGraph(t)
	// Outputs exist but the corpus is gone; freshness cannot be proven, so
	// the renderer rebuilds and surfaces the real failure at execution time.
	fsys := fakeFS{
		"render.out":  time.Unix(200, 0),
		"extract.out": time.Unix(300, 0),
		"combine.out": time.Unix(400, 0),
	}

	p, err := newPlanner(fsys).Plan(g, "combine")
	require.NoError(t, err)
	assert.Equal(t, []string{"render", "extract", "combine"}, p.Names())
}

func TestPlanMultiOutputUsesOldest(t *testing.T) {
	g := artifact.NewGraph()
	require.NoError(t, g.Add(&artifact.Node{
		Name:    "render",
		Outputs: []string{"page.tif", "page.box"},
		Inputs:  []string{"corpus.txt"},
	}))
	// The box file predates the corpus edit even though the tif does not:
	// the pair is rebuilt together.
	fsys := fakeFS{
		"corpus.txt": time.Unix(250, 0),
		"page.tif":   time.Unix(300, 0),
		"page.box":   time.Unix(200, 0),
	}

	p, err := newPlanner(fsys).Plan(g, "render")
	require.NoError(t, err)
	assert.Equal(t, []string{"render"}, p.Names())
}

func TestPlanDeclarationOrderTieBreak(t *testing.T) {
	g := artifact.NewGraph()
	require.NoError(t, g.Add(&artifact.Node{Name: "b", Outputs: []string{"b.out"}}))
	require.NoError(t, g.Add(&artifact.Node{Name: "a", Outputs: []string{"a.out"}}))
	require.NoError(t, g.Add(&artifact.Node{
		Name:    "sink",
		Outputs: []string{"sink.out"},
		Deps:    []string{"a", "b"},
	}))

	p, err := newPlanner(fakeFS{}).Plan(g, "sink")
	require.NoError(t, err)
	// Independent siblings keep graph declaration order, not dep order.
	assert.Equal(t, []string{"b", "a", "sink"}, p.Names())
}

func TestPlanUnknownTarget(t *testing.T) {
	g := chainGraph(t)
	_, err := newPlanner(fakeFS{}).Plan(g, "missing")
	assert.ErrorContains(t, err, "target node not found")
}

func TestPlanCyclicGraph(t *testing.T) {
	// Validate would reject this graph; the planner still refuses to loop
	// forever when handed one.
	g := artifact.NewGraph()
	require.NoError(t, g.Add(&artifact.Node{Name: "a", Deps: []string{"b"}, Outputs: []string{"a.out"}}))
	require.NoError(t, g.Add(&artifact.Node{Name: "b", Deps: []string{"a"}, Outputs: []string{"b.out"}}))

	_, err := newPlanner(fakeFS{}).Plan(g, "a")
	assert.ErrorContains(t, err, "not acyclic")
}
