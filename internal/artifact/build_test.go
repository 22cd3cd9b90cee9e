package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocrforge/tesstrain/internal/apperrors"
	"github.com/ocrforge/tesstrain/internal/config"
)

// newTestTraining creates a training model with every required source file
// present on disk.
func newTestTraining(t *testing.T, fonts []string, exposures []int) *config.Training {
	t.Helper()
	root := t.TempDir()

	training := &config.Training{
		Model:       "test_model",
		Lang:        "eng",
		Fonts:       fonts,
		LangdataDir: filepath.Join(root, "langdata"),
		TessdataDir: filepath.Join(root, "tessdata"),
		OutputDir:   filepath.Join(root, "output"),
		Exposures:   exposures,
	}
	training.ApplyDefaults()

	langDir := filepath.Join(training.LangdataDir, "eng")
	require.NoError(t, os.MkdirAll(langDir, 0o755))
	require.NoError(t, os.MkdirAll(training.TessdataDir, 0o755))
	for _, path := range []string{
		training.TrainingText,
		filepath.Join(langDir, "eng.wordlist"),
		filepath.Join(langDir, "eng.numbers"),
		filepath.Join(langDir, "eng.punc"),
		filepath.Join(training.TessdataDir, "eng.traineddata"),
	} {
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
	}
	return training
}

func newTestToolchain(t *testing.T) *Toolchain {
	t.Helper()
	tc, err := resolveToolchain(nil, allFoundLookPath)
	require.NoError(t, err)
	return tc
}

func TestBuildGraphShape(t *testing.T) {
	training := newTestTraining(t, []string{"Arial", "Times New Roman"}, []int{0, 3})
	g, err := Build(context.Background(), training, newTestToolchain(t))
	require.NoError(t, err)

	// Two fonts across two exposures: one render and one features node per
	// pair, plus the four singleton stages.
	assert.Equal(t, 2*2*2+4, g.Len())
	assert.Equal(t, "traineddata", g.Target())

	for _, name := range []string{
		"render.Arial.exp0",
		"render.Times_New_Roman.exp3",
		"features.Arial.exp0",
		"features.Times_New_Roman.exp3",
		"unicharset",
		"charset_props",
		"training_list",
		"traineddata",
	} {
		_, ok := g.Node(name)
		assert.True(t, ok, "expected node %q", name)
	}
}

func TestBuildWiring(t *testing.T) {
	training := newTestTraining(t, []string{"Arial"}, []int{0})
	g, err := Build(context.Background(), training, newTestToolchain(t))
	require.NoError(t, err)

	unicharset, ok := g.Node("unicharset")
	require.True(t, ok)
	assert.Equal(t, []string{"render.Arial.exp0"}, unicharset.Deps)
	require.Len(t, unicharset.Outputs, 1)
	assert.True(t, strings.HasSuffix(unicharset.Outputs[0], "eng.unicharset"))

	props, ok := g.Node("charset_props")
	require.True(t, ok)
	assert.Equal(t, []string{"unicharset"}, props.Deps)
	require.Len(t, props.Outputs, 2)
	assert.True(t, strings.HasSuffix(props.Outputs[0], "eng.annotated.unicharset"))
	assert.True(t, strings.HasSuffix(props.Outputs[1], "eng.xheights"))
	// The raw unicharset is read through -U only; the annotation lands in a
	// distinct file so this node never touches its dependency's output.
	assert.Contains(t, props.Command.Args, unicharset.Outputs[0])
	assert.NotContains(t, props.Outputs, unicharset.Outputs[0])

	features, ok := g.Node("features.Arial.exp0")
	require.True(t, ok)
	assert.Equal(t, []string{"render.Arial.exp0", "charset_props"}, features.Deps)
	assert.Contains(t, features.Command.Env[0], "TESSDATA_PREFIX=")
	require.Len(t, features.Outputs, 1)
	assert.Equal(t, training.OutputDir, filepath.Dir(features.Outputs[0]))

	render, ok := g.Node("render.Arial.exp0")
	require.True(t, ok)
	require.Len(t, render.Outputs, 2)
	assert.True(t, strings.HasSuffix(render.Outputs[0], "eng.Arial.exp0.tif"))
	assert.True(t, strings.HasSuffix(render.Outputs[1], "eng.Arial.exp0.box"))
	assert.Equal(t, []string{training.TrainingText}, render.Inputs)

	final, ok := g.Node("traineddata")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"charset_props", "training_list"}, final.Deps)
	assert.Equal(t,
		filepath.Join(training.OutputDir, "eng", "eng.traineddata"),
		final.Outputs[0])
	// The final stage reads the annotated unicharset, not the raw one.
	assert.Contains(t, final.Inputs, props.Outputs[0])
	assert.Contains(t, final.Command.Args, props.Outputs[0])
	assert.NotContains(t, final.Inputs, unicharset.Outputs[0])
}

func TestBuildTrainingListBuiltin(t *testing.T) {
	training := newTestTraining(t, []string{"Arial"}, []int{0})
	require.NoError(t, os.MkdirAll(training.OutputDir, 0o755))

	g, err := Build(context.Background(), training, newTestToolchain(t))
	require.NoError(t, err)

	list, ok := g.Node("training_list")
	require.True(t, ok)
	require.True(t, list.IsBuiltin())

	require.NoError(t, list.Builtin(context.Background()))
	content, err := os.ReadFile(list.Outputs[0])
	require.NoError(t, err)
	assert.Equal(t,
		filepath.Join(training.OutputDir, "eng.Arial.exp0.lstmf")+"\n",
		string(content))
}

func TestBuildFlags(t *testing.T) {
	t.Run("vertical font", func(t *testing.T) {
		training := newTestTraining(t, []string{"TakaoExGothic"}, []int{0})
		g, err := Build(context.Background(), training, newTestToolchain(t))
		require.NoError(t, err)

		render, ok := g.Node("render.TakaoExGothic.exp0")
		require.True(t, ok)
		assert.Contains(t, render.Command.Args, "--writing_mode=vertical-upright")
	})

	t.Run("rtl and recoder flags", func(t *testing.T) {
		training := newTestTraining(t, []string{"Arial"}, []int{0})
		training.LangIsRTL = true

		g, err := Build(context.Background(), training, newTestToolchain(t))
		require.NoError(t, err)

		final, _ := g.Node("traineddata")
		assert.Contains(t, final.Command.Args, "--lang_is_rtl")
		// Default norm_mode is 2, which selects the pass-through recoder.
		assert.Contains(t, final.Command.Args, "--pass_through_recoder")
	})

	t.Run("norm mode 1 disables recoder", func(t *testing.T) {
		training := newTestTraining(t, []string{"Arial"}, []int{0})
		training.NormMode = 1

		g, err := Build(context.Background(), training, newTestToolchain(t))
		require.NoError(t, err)

		final, _ := g.Node("traineddata")
		assert.NotContains(t, final.Command.Args, "--pass_through_recoder")
	})
}

func TestBuildErrors(t *testing.T) {
	t.Run("missing source file", func(t *testing.T) {
		training := newTestTraining(t, []string{"Arial"}, []int{0})
		require.NoError(t, os.Remove(filepath.Join(training.LangdataDir, "eng", "eng.wordlist")))

		_, err := Build(context.Background(), training, newTestToolchain(t))
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
		assert.ErrorContains(t, err, "eng.wordlist")
	})

	t.Run("duplicate font", func(t *testing.T) {
		training := newTestTraining(t, []string{"Arial", "Arial"}, []int{0})

		_, err := Build(context.Background(), training, newTestToolchain(t))
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
		assert.ErrorContains(t, err, "duplicate node name")
	})
}
