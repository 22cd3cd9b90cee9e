package hcl

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/ocrforge/tesstrain/internal/apperrors"
	"github.com/ocrforge/tesstrain/internal/config"
	"github.com/ocrforge/tesstrain/internal/ctxlog"
	"github.com/ocrforge/tesstrain/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the training file at path, evaluates it against the host
// environment, and translates it into the format-agnostic model. Exactly one
// training block is expected per file.
func (l *Loader) Load(ctx context.Context, path string) (*config.Training, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, apperrors.Configuration("failed to parse %s: %s", path, diags.Error())
	}

	evalCtx := newEvalContext()

	var root schema.Root
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &root); diags.HasErrors() {
		return nil, apperrors.Configuration("failed to decode %s: %s", path, diags.Error())
	}

	switch len(root.Trainings) {
	case 0:
		return nil, apperrors.Configuration("%s: no training block found", path)
	case 1:
		// fallthrough below
	default:
		return nil, apperrors.Configuration("%s: expected exactly one training block, found %d", path, len(root.Trainings))
	}

	training, err := l.translateTraining(root.Trainings[0], evalCtx)
	if err != nil {
		return nil, err
	}

	training.ApplyDefaults()
	logger.Debug("HCL loading complete.", "model", training.Model, "lang", training.Lang, "fonts", len(training.Fonts))
	return training, nil
}

// newEvalContext exposes the process environment under the `env` namespace.
func newEvalContext() *hcl.EvalContext {
	envVals := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			envVals[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(envVals),
		},
	}
}
