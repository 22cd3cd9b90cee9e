package hcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/ocrforge/tesstrain/internal/apperrors"
	"github.com/ocrforge/tesstrain/internal/config"
	"github.com/ocrforge/tesstrain/internal/schema"
)

// translateTraining converts the HCL-specific training schema into the
// agnostic model.
func (l *Loader) translateTraining(s *schema.Training, evalCtx *hcl.EvalContext) (*config.Training, error) {
	tools, err := l.extractToolOverrides(s.Tools, evalCtx)
	if err != nil {
		return nil, err
	}

	return &config.Training{
		Model:        s.Model,
		Lang:         s.Lang,
		Fonts:        s.Fonts,
		LangdataDir:  s.LangdataDir,
		TessdataDir:  s.TessdataDir,
		FontsDir:     s.FontsDir,
		TrainingText: s.TrainingText,
		OutputDir:    s.OutputDir,
		WorkDir:      s.WorkDir,
		Exposures:    s.Exposures,
		PtSize:       s.PtSize,
		MaxPages:     s.MaxPages,
		Leading:      s.Leading,
		CharSpacing:  s.CharSpacing,
		DistortImage: s.DistortImage,
		SaveBoxTiff:  s.SaveBoxTiff,
		LangIsRTL:    s.LangIsRTL,
		NormMode:     s.NormMode,
		Tools:        tools,
	}, nil
}

// extractToolOverrides evaluates the free-form attributes of the tools block
// into a name -> path map.
func (l *Loader) extractToolOverrides(block *schema.ToolsBlock, evalCtx *hcl.EvalContext) (map[string]string, error) {
	if block == nil || block.Body == nil {
		return nil, nil
	}

	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, apperrors.Configuration("tools block: %s", diags.Error())
	}
	if len(attrs) == 0 {
		return nil, nil
	}

	tools := make(map[string]string, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, apperrors.Configuration("tools block: attribute %q: %s", name, diags.Error())
		}
		strVal, err := convert.Convert(val, cty.String)
		if err != nil {
			return nil, apperrors.Configuration("tools block: attribute %q must be a string: %v", name, err)
		}
		tools[name] = strVal.AsString()
	}
	return tools, nil
}
