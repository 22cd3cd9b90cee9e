// Package schema holds the HCL-tagged structures for a training file. It is
// deliberately free of behavior; translation into the format-agnostic config
// model lives in the hcl package.
package schema

import "github.com/hashicorp/hcl/v2"

// Root represents the top-level structure of a training file.
type Root struct {
	Trainings []*Training `hcl:"training,block"`
	Remain    hcl.Body    `hcl:",remain"`
}

// Training represents a `training "<model>" { ... }` block.
type Training struct {
	Model string `hcl:"model,label"`

	Lang  string   `hcl:"lang"`
	Fonts []string `hcl:"fonts"`

	LangdataDir  string `hcl:"langdata_dir"`
	TessdataDir  string `hcl:"tessdata_dir"`
	FontsDir     string `hcl:"fonts_dir,optional"`
	TrainingText string `hcl:"training_text,optional"`
	OutputDir    string `hcl:"output_dir"`
	WorkDir      string `hcl:"workdir,optional"`

	Exposures   []int   `hcl:"exposures,optional"`
	PtSize      int     `hcl:"ptsize,optional"`
	MaxPages    int     `hcl:"max_pages,optional"`
	Leading     int     `hcl:"leading,optional"`
	CharSpacing float64 `hcl:"char_spacing,optional"`

	DistortImage bool `hcl:"distort_image,optional"`
	SaveBoxTiff  bool `hcl:"save_box_tiff,optional"`
	LangIsRTL    bool `hcl:"lang_is_rtl,optional"`
	NormMode     int  `hcl:"norm_mode,optional"`

	Tools *ToolsBlock `hcl:"tools,block"`
}

// ToolsBlock represents the content of the optional 'tools' block. Its
// attributes are free-form tool-name = path pairs, so the body is kept raw
// and evaluated by the loader.
type ToolsBlock struct {
	Body hcl.Body `hcl:",remain"`
}
