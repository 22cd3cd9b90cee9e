package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubScripts imitate the observable contract of each training tool: they
// parse just enough of the real argument syntax to create the output files
// the pipeline expects, and nothing else.
var stubScripts = map[string]string{
	"text2image": `#!/bin/sh
for a in "$@"; do
  case "$a" in
    --outputbase=*) base="${a#--outputbase=}" ;;
  esac
done
: > "$base.tif"
: > "$base.box"
`,
	"unicharset_extractor": `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    --output_unicharset) out="$2"; shift ;;
  esac
  shift
done
: > "$out"
`,
	"set_unicharset_properties": `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    -O) uni="$2"; shift ;;
    -X) xh="$2"; shift ;;
  esac
  shift
done
: > "$uni"
: > "$xh"
`,
	"tesseract": `#!/bin/sh
: > "$2.lstmf"
`,
	"combine_lang_model": `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    --output_dir) dir="$2"; shift ;;
    --lang) lang="$2"; shift ;;
  esac
  shift
done
mkdir -p "$dir/$lang"
: > "$dir/$lang/$lang.traineddata"
`,
}

// WriteStubTool writes an executable shell script named after the tool into
// dir and returns its path.
func WriteStubTool(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// StubAllTools writes working stand-ins for every external tool into dir and
// returns a tool-name to path map suitable for a toolchain override.
func StubAllTools(t *testing.T, dir string) map[string]string {
	t.Helper()
	tools := make(map[string]string, len(stubScripts))
	for name, script := range stubScripts {
		tools[name] = WriteStubTool(t, dir, name, script)
	}
	return tools
}

// FailingStub returns a script that prints a diagnostic and exits with the
// given code, producing no output files.
func FailingStub(code int) string {
	return fmt.Sprintf("#!/bin/sh\necho \"stub tool failure\" >&2\nexit %d\n", code)
}

// SilentStub is a script that exits cleanly without writing any output file.
// It exists to exercise the declared-outputs check after a zero exit.
const SilentStub = "#!/bin/sh\nexit 0\n"
