package artifact

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ocrforge/tesstrain/internal/apperrors"
)

// External tool names of the upstream training toolchain.
const (
	ToolText2Image              = "text2image"
	ToolUnicharsetExtractor     = "unicharset_extractor"
	ToolSetUnicharsetProperties = "set_unicharset_properties"
	ToolTesseract               = "tesseract"
	ToolCombineLangModel        = "combine_lang_model"
)

// requiredTools lists every binary the pipeline may invoke. Resolution
// happens once, at toolchain construction, never per step.
var requiredTools = []string{
	ToolText2Image,
	ToolUnicharsetExtractor,
	ToolSetUnicharsetProperties,
	ToolTesseract,
	ToolCombineLangModel,
}

// Development builds of the toolchain keep some binaries under api/ and
// training/ relative to the working directory, so those prefixes are probed
// before giving up.
var toolPrefixes = []string{"", "api/", "training/"}

// Toolchain maps each tool name to a resolved binary path.
type Toolchain struct {
	paths map[string]string
}

// ResolveToolchain resolves every required tool, honoring explicit path
// overrides first and falling back to a PATH lookup. A tool that cannot be
// resolved is a configuration error.
func ResolveToolchain(overrides map[string]string) (*Toolchain, error) {
	return resolveToolchain(overrides, exec.LookPath)
}

// resolveToolchain is the injectable core of ResolveToolchain.
func resolveToolchain(overrides map[string]string, lookPath func(string) (string, error)) (*Toolchain, error) {
	for name := range overrides {
		if !isKnownTool(name) {
			return nil, apperrors.Configuration("tools block: unknown tool %q", name)
		}
	}

	tc := &Toolchain{paths: make(map[string]string, len(requiredTools))}
	for _, name := range requiredTools {
		if override := overrides[name]; override != "" {
			info, err := os.Stat(override)
			if err != nil || info.IsDir() {
				return nil, apperrors.Configuration("tool %s: override %q is not an executable file", name, override)
			}
			tc.paths[name] = override
			continue
		}

		resolved := ""
		for _, prefix := range toolPrefixes {
			if path, err := lookPath(filepath.FromSlash(prefix) + name); err == nil {
				resolved = path
				break
			}
		}
		if resolved == "" {
			return nil, apperrors.Configuration("tool %s not found on PATH", name)
		}
		tc.paths[name] = resolved
	}
	return tc, nil
}

// Path returns the resolved binary path for a tool name. The toolchain is
// complete by construction, so a missing entry is a programmer error.
func (t *Toolchain) Path(name string) string {
	path, ok := t.paths[name]
	if !ok {
		panic("toolchain: unresolved tool " + name)
	}
	return path
}

func isKnownTool(name string) bool {
	for _, t := range requiredTools {
		if t == name {
			return true
		}
	}
	return false
}
