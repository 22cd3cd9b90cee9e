package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ocrforge/tesstrain/internal/app"
	"github.com/ocrforge/tesstrain/internal/apperrors"
	"github.com/ocrforge/tesstrain/internal/cli"
	"github.com/ocrforge/tesstrain/internal/hcl"
)

// main is the entrypoint for the tesstrain application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, apperrors.ErrConfiguration) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Instantiate the concrete HCL loader to pass to the app.
	loader := hcl.NewLoader()
	trainingApp, err := app.NewApp(outW, appConfig, loader)
	if err != nil {
		return err
	}

	report, err := trainingApp.Run(context.Background())
	if err != nil {
		return err
	}

	if !report.Success {
		if failure := report.FirstFailure(); failure != nil {
			fmt.Fprintf(os.Stderr, "step %q failed: %v\n", failure.Node, failure.Err)
			if len(failure.Output) > 0 {
				fmt.Fprintf(os.Stderr, "%s\n", failure.Output)
			}
		}
		return fmt.Errorf("training %q did not complete", report.Model)
	}

	fmt.Fprintf(outW, "Training complete: %s\n", report.ArtifactPath)
	return nil
}
