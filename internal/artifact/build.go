package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ocrforge/tesstrain/internal/apperrors"
	"github.com/ocrforge/tesstrain/internal/config"
	"github.com/ocrforge/tesstrain/internal/ctxlog"
)

// FontConfigCache returns the fontconfig cache directory used by every
// text2image invocation under the given work directory.
func FontConfigCache(workDir string) string {
	return filepath.Join(workDir, "fc_cache")
}

// builder carries the per-run paths shared by the node constructors.
type builder struct {
	t        *config.Training
	tc       *Toolchain
	graph    *Graph
	fcCache  string
	buildErr error
}

// Build constructs the complete, validated artifact graph for a training
// run. Nodes are appended producers-first, so declaration order is already a
// valid topological order. Source files every command will read are checked
// here, before anything is spawned.
func Build(ctx context.Context, t *config.Training, tc *Toolchain) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.", "model", t.Model)

	b := &builder{
		t:       t,
		tc:      tc,
		graph:   NewGraph(),
		fcCache: FontConfigCache(t.WorkDir),
	}

	if err := b.checkSourceFiles(); err != nil {
		return nil, err
	}

	renderNames, boxFiles := b.addRenderNodes()
	unicharsetPath := b.addUnicharsetNode(renderNames, boxFiles)
	annotatedPath := b.addCharsetPropsNode(unicharsetPath)
	featureNames, lstmfPaths := b.addFeatureNodes()
	b.addTrainingListNode(featureNames, lstmfPaths)
	b.addTrainedDataNode(annotatedPath)

	if b.buildErr != nil {
		return nil, apperrors.Configuration("building artifact graph: %v", b.buildErr)
	}
	if err := b.graph.Validate(); err != nil {
		return nil, apperrors.Configuration("validating artifact graph: %v", err)
	}
	if err := b.graph.SetTarget("traineddata"); err != nil {
		return nil, apperrors.Configuration("building artifact graph: %v", err)
	}

	logger.Debug("Build: graph construction successful.", "node_count", b.graph.Len())
	return b.graph, nil
}

// add appends a node, keeping the first construction error. Node errors only
// ever fire on duplicate names, i.e. duplicate fonts or exposures in the
// configuration.
func (b *builder) add(n *Node) {
	if b.buildErr != nil {
		return
	}
	b.buildErr = b.graph.Add(n)
}

// checkSourceFiles verifies every external file the commands will read.
func (b *builder) checkSourceFiles() error {
	required := []string{
		b.t.TrainingText,
		b.baseTraineddata(),
		b.langdataFile("wordlist"),
		b.langdataFile("numbers"),
		b.langdataFile("punc"),
	}
	for _, path := range required {
		if _, err := os.Stat(path); err != nil {
			return apperrors.Configuration("training %q: required input %q is not readable: %v", b.t.Model, path, err)
		}
	}
	return nil
}

// basename returns the deterministic artifact stem for one font/exposure,
// e.g. "eng.Arial_Bold.exp0".
func (b *builder) basename(font string, exposure int) string {
	return fmt.Sprintf("%s.%s.exp%d", b.t.Lang, makeFontName(font), exposure)
}

func (b *builder) langdataFile(ext string) string {
	return filepath.Join(b.t.LangdataDir, b.t.Lang, b.t.Lang+"."+ext)
}

func (b *builder) baseTraineddata() string {
	return filepath.Join(b.t.TessdataDir, b.t.Lang+".traineddata")
}

// addRenderNodes creates one text2image node per font and exposure. Each
// produces the ground-truth image/box pair.
func (b *builder) addRenderNodes() (names []string, boxFiles []string) {
	for _, exposure := range b.t.Exposures {
		for _, font := range b.t.Fonts {
			base := filepath.Join(b.t.WorkDir, b.basename(font, exposure))

			args := []string{
				"--fontconfig_tmpdir=" + b.fcCache,
				"--strip_unrenderable_words",
				"--leading=" + strconv.Itoa(b.t.Leading),
				"--char_spacing=" + strconv.FormatFloat(b.t.CharSpacing, 'g', -1, 64),
				"--exposure=" + strconv.Itoa(exposure),
				"--outputbase=" + base,
				"--max_pages=" + strconv.Itoa(b.t.MaxPages),
			}
			if b.t.FontsDir != "" {
				args = append(args, "--fonts_dir="+b.t.FontsDir)
			}
			if b.t.DistortImage {
				args = append(args, "--distort_image")
			}
			if isVerticalFont(font) {
				args = append(args, "--writing_mode=vertical-upright")
			}
			args = append(args,
				"--font="+font,
				"--text="+b.t.TrainingText,
				"--ptsize="+strconv.Itoa(b.t.PtSize),
			)

			name := fmt.Sprintf("render.%s.exp%d", makeFontName(font), exposure)
			boxFile := base + ".box"
			b.add(&Node{
				Name:    name,
				Kind:    KindRender,
				Outputs: []string{base + ".tif", boxFile},
				Inputs:  []string{b.t.TrainingText},
				Command: Command{Tool: b.tc.Path(ToolText2Image), Args: args},
			})
			names = append(names, name)
			boxFiles = append(boxFiles, boxFile)
		}
	}
	return names, boxFiles
}

// addUnicharsetNode creates the unicharset extraction node over all box files.
func (b *builder) addUnicharsetNode(renderNames, boxFiles []string) string {
	unicharsetPath := filepath.Join(b.t.WorkDir, b.t.Lang+".unicharset")
	args := append([]string{
		"--output_unicharset", unicharsetPath,
		"--norm_mode", strconv.Itoa(b.t.NormMode),
	}, boxFiles...)

	b.add(&Node{
		Name:    "unicharset",
		Kind:    KindUnicharset,
		Outputs: []string{unicharsetPath},
		Deps:    renderNames,
		Command: Command{Tool: b.tc.Path(ToolUnicharsetExtractor), Args: args},
	})
	return unicharsetPath
}

// addCharsetPropsNode annotates the raw unicharset into a separate file and
// emits xheights. Annotating into a distinct path keeps the raw unicharset's
// mtime untouched, so this node reads strictly older files than it writes no
// matter which order the tool saves its two outputs in.
func (b *builder) addCharsetPropsNode(unicharsetPath string) string {
	annotatedPath := filepath.Join(b.t.WorkDir, b.t.Lang+".annotated.unicharset")
	xheightsPath := filepath.Join(b.t.WorkDir, b.t.Lang+".xheights")
	b.add(&Node{
		Name:    "charset_props",
		Kind:    KindCharsetProps,
		Outputs: []string{annotatedPath, xheightsPath},
		Deps:    []string{"unicharset"},
		Command: Command{
			Tool: b.tc.Path(ToolSetUnicharsetProperties),
			Args: []string{
				"-U", unicharsetPath,
				"-O", annotatedPath,
				"-X", xheightsPath,
				"--script_dir=" + b.t.LangdataDir,
			},
		},
	})
	return annotatedPath
}

// addFeatureNodes creates one lstmf extraction node per rendered image. The
// feature files land directly in the output directory so their names stay
// stable for the training list and for staleness checks.
func (b *builder) addFeatureNodes() (names []string, lstmfPaths []string) {
	for _, exposure := range b.t.Exposures {
		for _, font := range b.t.Fonts {
			base := b.basename(font, exposure)
			tifPath := filepath.Join(b.t.WorkDir, base+".tif")
			outBase := filepath.Join(b.t.OutputDir, base)

			name := fmt.Sprintf("features.%s.exp%d", makeFontName(font), exposure)
			b.add(&Node{
				Name:    name,
				Kind:    KindFeatures,
				Outputs: []string{outBase + ".lstmf"},
				Inputs:  []string{b.baseTraineddata()},
				Deps: []string{
					fmt.Sprintf("render.%s.exp%d", makeFontName(font), exposure),
					"charset_props",
				},
				Command: Command{
					Tool: b.tc.Path(ToolTesseract),
					Args: []string{tifPath, outBase, "lstm.train"},
					Env:  []string{"TESSDATA_PREFIX=" + b.t.TessdataDir},
				},
			})
			names = append(names, name)
			lstmfPaths = append(lstmfPaths, outBase+".lstmf")
		}
	}
	return names, lstmfPaths
}

// addTrainingListNode creates the builtin node writing the feature-file list.
func (b *builder) addTrainingListNode(featureNames, lstmfPaths []string) {
	listPath := filepath.Join(b.t.OutputDir, b.t.Lang+".training_files.txt")
	b.add(&Node{
		Name:    "training_list",
		Kind:    KindTrainingList,
		Outputs: []string{listPath},
		Deps:    featureNames,
		Builtin: func(ctx context.Context) error {
			return os.WriteFile(listPath, []byte(strings.Join(lstmfPaths, "\n")+"\n"), 0o644)
		},
	})
}

// addTrainedDataNode creates the final combine_lang_model node reading the
// annotated unicharset.
func (b *builder) addTrainedDataNode(annotatedPath string) {
	args := []string{
		"--input_unicharset", annotatedPath,
		"--script_dir", b.t.LangdataDir,
		"--words", b.langdataFile("wordlist"),
		"--numbers", b.langdataFile("numbers"),
		"--puncs", b.langdataFile("punc"),
		"--output_dir", b.t.OutputDir,
		"--lang", b.t.Lang,
	}
	if b.t.LangIsRTL {
		args = append(args, "--lang_is_rtl")
	}
	if b.t.NormMode >= 2 {
		args = append(args, "--pass_through_recoder")
	}

	b.add(&Node{
		Name: "traineddata",
		Kind: KindTrainedData,
		Outputs: []string{
			filepath.Join(b.t.OutputDir, b.t.Lang, b.t.Lang+".traineddata"),
		},
		Inputs: []string{
			annotatedPath,
			b.langdataFile("wordlist"),
			b.langdataFile("numbers"),
			b.langdataFile("punc"),
		},
		Deps:    []string{"charset_props", "training_list"},
		Command: Command{Tool: b.tc.Path(ToolCombineLangModel), Args: args},
	})
}
