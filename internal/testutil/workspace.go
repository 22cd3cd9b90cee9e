package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Workspace is a self-contained on-disk fixture for one training run: the
// langdata and tessdata source trees, a directory of stub tools, and empty
// output and work directories.
type Workspace struct {
	Root        string
	Lang        string
	LangdataDir string
	TessdataDir string
	OutputDir   string
	WorkDir     string
	ToolsDir    string

	// Tools maps each tool name to its stub binary path.
	Tools map[string]string
}

// NewWorkspace builds a complete training workspace under a temporary
// directory, including stub binaries for every external tool.
func NewWorkspace(t *testing.T, lang string) *Workspace {
	t.Helper()

	root := t.TempDir()
	ws := &Workspace{
		Root:        root,
		Lang:        lang,
		LangdataDir: filepath.Join(root, "langdata"),
		TessdataDir: filepath.Join(root, "tessdata"),
		OutputDir:   filepath.Join(root, "output"),
		WorkDir:     filepath.Join(root, "output", "tmp"),
		ToolsDir:    filepath.Join(root, "tools"),
	}

	langDir := filepath.Join(ws.LangdataDir, lang)
	require.NoError(t, os.MkdirAll(langDir, 0o755))
	require.NoError(t, os.MkdirAll(ws.TessdataDir, 0o755))
	require.NoError(t, os.MkdirAll(ws.ToolsDir, 0o755))

	sources := map[string]string{
		filepath.Join(langDir, lang+".training_text"):      "The quick brown fox jumps over the lazy dog.\n",
		filepath.Join(langDir, lang+".wordlist"):           "the\nquick\nbrown\n",
		filepath.Join(langDir, lang+".numbers"):            "0\n1\n2\n",
		filepath.Join(langDir, lang+".punc"):               ".\n,\n",
		filepath.Join(ws.TessdataDir, lang+".traineddata"): "base model\n",
	}
	for path, content := range sources {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	ws.Tools = StubAllTools(t, ws.ToolsDir)
	return ws
}

// ReplaceTool swaps one stub binary for a different script, keeping the path
// stable so existing configuration files remain valid.
func (ws *Workspace) ReplaceTool(t *testing.T, name, script string) {
	t.Helper()
	path, ok := ws.Tools[name]
	require.True(t, ok, "unknown tool %q", name)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
}

// ConfigHCL renders a training configuration file for this workspace and
// returns its path. Extra lines are spliced verbatim into the training block.
func (ws *Workspace) ConfigHCL(t *testing.T, model string, fonts []string, extra ...string) string {
	t.Helper()

	quoted := make([]string, len(fonts))
	for i, f := range fonts {
		quoted[i] = fmt.Sprintf("%q", f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "training %q {\n", model)
	fmt.Fprintf(&b, "  lang         = %q\n", ws.Lang)
	fmt.Fprintf(&b, "  fonts        = [%s]\n", strings.Join(quoted, ", "))
	fmt.Fprintf(&b, "  langdata_dir = %q\n", ws.LangdataDir)
	fmt.Fprintf(&b, "  tessdata_dir = %q\n", ws.TessdataDir)
	fmt.Fprintf(&b, "  output_dir   = %q\n", ws.OutputDir)
	for _, line := range extra {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	b.WriteString("  tools {\n")
	for name, path := range ws.Tools {
		fmt.Fprintf(&b, "    %s = %q\n", name, path)
	}
	b.WriteString("  }\n}\n")

	configPath := filepath.Join(ws.Root, "training.hcl")
	require.NoError(t, os.WriteFile(configPath, []byte(b.String()), 0o644))
	return configPath
}

// Touch updates the mtime of a file to the current time, creating it empty
// if it does not exist.
func Touch(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		return
	}
	now := time.Now()
	require.NoError(t, os.Chtimes(path, now, now))
}
