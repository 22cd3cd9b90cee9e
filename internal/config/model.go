package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ocrforge/tesstrain/internal/apperrors"
)

// Training is the unified, format-agnostic description of one training run:
// which language and fonts to train, where the upstream data lives, and
// where intermediate and final artifacts go.
type Training struct {
	// Model is the logical name of the run, taken from the block label.
	Model string

	Lang  string
	Fonts []string

	LangdataDir string
	TessdataDir string
	FontsDir    string

	// TrainingText is the source text rendered into training images.
	// Defaults to <langdata_dir>/<lang>/<lang>.training_text.
	TrainingText string

	OutputDir string

	// WorkDir holds intermediate artifacts. Defaults to <output_dir>/tmp.
	WorkDir string

	Exposures   []int
	PtSize      int
	MaxPages    int
	Leading     int
	CharSpacing float64

	DistortImage bool
	SaveBoxTiff  bool
	LangIsRTL    bool

	// NormMode is the unicharset normalization mode (1..3). Modes >= 2 also
	// enable the pass-through recoder when combining the language model.
	NormMode int

	// Tools maps an external tool name to an explicit binary path,
	// overriding PATH lookup.
	Tools map[string]string
}

// modelNameRe constrains the model name so it is safe to use in file names.
var modelNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ApplyDefaults fills in every optional field that was left unset.
func (t *Training) ApplyDefaults() {
	if t.TrainingText == "" && t.LangdataDir != "" && t.Lang != "" {
		t.TrainingText = filepath.Join(t.LangdataDir, t.Lang, t.Lang+".training_text")
	}
	if t.WorkDir == "" && t.OutputDir != "" {
		t.WorkDir = filepath.Join(t.OutputDir, "tmp")
	}
	if len(t.Exposures) == 0 {
		t.Exposures = []int{0}
	}
	if t.PtSize == 0 {
		t.PtSize = 12
	}
	if t.Leading == 0 {
		t.Leading = 32
	}
	if t.NormMode == 0 {
		t.NormMode = 2
	}
}

// Validate checks the model for completeness before any graph is built or
// any process is spawned. All failures are configuration errors.
func (t *Training) Validate() error {
	if t.Model == "" {
		return apperrors.Configuration("training block must carry a model name label")
	}
	if !modelNameRe.MatchString(t.Model) {
		return apperrors.Configuration("malformed model name %q: must match %s", t.Model, modelNameRe)
	}
	if t.Lang == "" {
		return apperrors.Configuration("training %q: lang is required", t.Model)
	}
	if !ValidLangCode(t.Lang) {
		return apperrors.Configuration("training %q: unknown language code %q", t.Model, t.Lang)
	}
	if len(t.Fonts) == 0 {
		return apperrors.Configuration("training %q: at least one font is required", t.Model)
	}
	if t.OutputDir == "" {
		return apperrors.Configuration("training %q: output_dir is required", t.Model)
	}
	if t.NormMode < 1 || t.NormMode > 3 {
		return apperrors.Configuration("training %q: norm_mode must be between 1 and 3, got %d", t.Model, t.NormMode)
	}

	for _, dir := range []struct{ name, path string }{
		{"langdata_dir", t.LangdataDir},
		{"tessdata_dir", t.TessdataDir},
	} {
		if dir.path == "" {
			return apperrors.Configuration("training %q: %s is required", t.Model, dir.name)
		}
		info, err := os.Stat(dir.path)
		if err != nil || !info.IsDir() {
			return apperrors.Configuration("training %q: %s %q is not a directory", t.Model, dir.name, dir.path)
		}
	}

	if _, err := os.Stat(t.TrainingText); err != nil {
		return apperrors.Configuration("training %q: training text %q is not readable: %v", t.Model, t.TrainingText, err)
	}
	return nil
}

// String identifies the run in logs without dumping every path.
func (t *Training) String() string {
	return fmt.Sprintf("training %s (lang=%s fonts=%d)", t.Model, t.Lang, len(t.Fonts))
}
