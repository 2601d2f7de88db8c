// Package batch runs the classification pipeline over folders of
// scanned documents.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/MeKo-Tech/idscan/internal/pipeline"
)

// ProcessBatch discovers files under the given paths and classifies
// them all.
func ProcessBatch(ctx context.Context, paths []string, cfg *Config) (*Result, error) {
	files, err := discoverFiles(paths, cfg.Recursive, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no scannable files found")
	}

	var progress pipeline.ProgressCallback = pipeline.NoOpProgress{}
	if cfg.ShowProgress && !cfg.Quiet {
		progress = pipeline.NewConsoleProgress(os.Stderr)
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing pipeline: %v\n", err)
		}
	}()

	start := time.Now()
	results, fileErrs := processFiles(ctx, p, files, cfg.Workers, progress)

	return &Result{
		Results:     results,
		Errors:      fileErrs,
		Duration:    time.Since(start),
		WorkerCount: cfg.Workers,
	}, nil
}

func buildPipeline(cfg *Config) (*pipeline.Pipeline, error) {
	b := pipeline.NewBuilder().WithSpeedTier(cfg.SpeedTier)
	if cfg.App != nil {
		b = b.WithConfig(cfg.App)
	}
	return b.Build()
}
