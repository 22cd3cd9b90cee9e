package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/ocrforge/tesstrain/internal/app"
	"github.com/ocrforge/tesstrain/internal/hcl"
	"github.com/ocrforge/tesstrain/internal/pipeline"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Report    *pipeline.Report
	Err       error
}

// RunTraining provides a standardized harness for running a full pipeline
// against a workspace configuration file using a default background context.
func RunTraining(t *testing.T, configPath string, appConfig app.Config) *HarnessResult {
	t.Helper()
	return RunTrainingWithContext(context.Background(), t, configPath, appConfig)
}

// RunTrainingWithContext runs the full application stack, loading the given
// configuration file and executing the pipeline, and captures the log output.
func RunTrainingWithContext(ctx context.Context, t *testing.T, configPath string, appConfig app.Config) *HarnessResult {
	t.Helper()

	appConfig.ConfigPath = configPath
	if appConfig.LogLevel == "" {
		appConfig.LogLevel = "debug"
	}
	if appConfig.LogFormat == "" {
		appConfig.LogFormat = "text"
	}

	cfg, err := app.NewConfig(appConfig)
	if err != nil {
		return &HarnessResult{Err: err}
	}

	logBuffer := &SafeBuffer{}
	trainingApp, err := app.NewApp(logBuffer, cfg, hcl.NewLoader())
	if err != nil {
		return &HarnessResult{LogOutput: logBuffer.String(), Err: err}
	}

	report, err := trainingApp.Run(ctx)

	if os.Getenv("TESSTRAIN_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Report:    report,
		Err:       err,
	}
}
