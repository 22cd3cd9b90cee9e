package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrforge/tesstrain/internal/apperrors"
	"github.com/ocrforge/tesstrain/internal/artifact"
)

// shellNode wraps a shell snippet in a node so tests can drive the runner
// with real processes.
func shellNode(name, script string, outputs ...string) *artifact.Node {
	return &artifact.Node{
		Name:    name,
		Kind:    artifact.KindRender,
		Outputs: outputs,
		Command: artifact.Command{Tool: "/bin/sh", Args: []string{"-c", script}},
	}
}

func TestExecuteSuccess(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "page.tif")
	node := shellNode("render", "echo rendering; : > "+out, out)

	result := New(dir).Execute(context.Background(), node)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.ExitCode)
	assert.NoError(t, result.Err)
	assert.Contains(t, string(result.Output), "rendering")
	assert.Empty(t, result.MissingOutputs)
	assert.FileExists(t, out)
}

func TestExecuteNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	node := shellNode("render", "echo boom >&2; exit 3")

	result := New(dir).Execute(context.Background(), node)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.ExitCode)
	assert.True(t, errors.Is(result.Err, apperrors.ErrExecution))
	assert.Contains(t, string(result.Output), "boom")
}

func TestExecuteCleanExitWithoutOutputs(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "never_written.lstmf")
	node := shellNode("features", "exit 0", missing)

	result := New(dir).Execute(context.Background(), node)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.ExitCode)
	assert.True(t, errors.Is(result.Err, apperrors.ErrExecution))
	assert.Equal(t, []string{missing}, result.MissingOutputs)
}

func TestExecuteSpawnFailure(t *testing.T) {
	dir := t.TempDir()
	node := &artifact.Node{
		Name:    "render",
		Command: artifact.Command{Tool: filepath.Join(dir, "no_such_tool")},
	}

	result := New(dir).Execute(context.Background(), node)

	assert.False(t, result.Success)
	assert.Equal(t, -1, result.ExitCode)
	assert.True(t, errors.Is(result.Err, apperrors.ErrEnvironment))
}

func TestExecuteEnvPassthrough(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "env.txt")
	node := shellNode("features", `echo "$TESSDATA_PREFIX" > `+out, out)
	node.Command.Env = []string{"TESSDATA_PREFIX=/data/tessdata"}

	result := New(dir).Execute(context.Background(), node)
	require.True(t, result.Success)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "/data/tessdata\n", string(content))
}

func TestExecuteWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "cwd.txt")
	node := shellNode("render", "pwd > "+out, out)

	result := New(dir).Execute(context.Background(), node)
	require.True(t, result.Success)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	// Resolve symlinks so the comparison survives macOS /tmp indirection.
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(string(content[:len(content)-1]))
	require.NoError(t, err)
	assert.Equal(t, resolved, got)
}

func TestExecuteContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	node := shellNode("render", "sleep 10")
	result := New(t.TempDir()).Execute(ctx, node)

	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Err, apperrors.ErrExecution))
}

func TestExecuteBuiltin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		dir := t.TempDir()
		out := filepath.Join(dir, "list.txt")
		node := &artifact.Node{
			Name:    "training_list",
			Kind:    artifact.KindTrainingList,
			Outputs: []string{out},
			Builtin: func(ctx context.Context) error {
				return os.WriteFile(out, []byte("a.lstmf\n"), 0o644)
			},
		}

		result := New(dir).Execute(context.Background(), node)
		assert.True(t, result.Success)
		assert.Equal(t, 0, result.ExitCode)
		assert.Empty(t, result.Cmd)
	})

	t.Run("failure", func(t *testing.T) {
		node := &artifact.Node{
			Name:    "training_list",
			Kind:    artifact.KindTrainingList,
			Builtin: func(ctx context.Context) error { return errors.New("disk full") },
		}

		result := New(t.TempDir()).Execute(context.Background(), node)
		assert.False(t, result.Success)
		assert.True(t, errors.Is(result.Err, apperrors.ErrExecution))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ran := false
		node := &artifact.Node{
			Name:    "training_list",
			Kind:    artifact.KindTrainingList,
			Builtin: func(ctx context.Context) error { ran = true; return nil },
		}

		result := New(t.TempDir()).Execute(ctx, node)
		assert.False(t, result.Success)
		assert.False(t, ran)
	})
}
