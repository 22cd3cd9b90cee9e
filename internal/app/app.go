package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/ocrforge/tesstrain/internal/artifact"
	"github.com/ocrforge/tesstrain/internal/config"
	"github.com/ocrforge/tesstrain/internal/ctxlog"
)

// App encapsulates one training run's dependencies, configuration, and
// lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	training  *config.Training
	toolchain *artifact.Toolchain
}

// NewApp loads and validates the training configuration and resolves the
// external toolchain. Every error it returns is a configuration error:
// nothing has been spawned and no files have been touched yet.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	training, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := training.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Training configuration loaded and validated.", "model", training.Model)

	// Resolve every tool once, up front, so a missing binary fails the run
	// before any artifact work starts.
	toolchain, err := artifact.ResolveToolchain(training.Tools)
	if err != nil {
		return nil, err
	}
	logger.Debug("External toolchain resolved.")

	return &App{
		outW:      outW,
		logger:    logger,
		config:    appConfig,
		training:  training,
		toolchain: toolchain,
	}, nil
}

// Training returns the loaded training model. This is primarily for testing.
func (a *App) Training() *config.Training {
	return a.training
}
