package batch

import (
	"fmt"
	"os"
	"time"

	"github.com/MeKo-Tech/idscan/internal/config"
	"github.com/MeKo-Tech/idscan/internal/pipeline"
)

// Config holds all settings for a batch classification run.
type Config struct {
	// App carries the classification configuration; nil means the
	// built-in defaults.
	App *config.Config

	// SpeedTier selects the OCR confidence tier by name.
	SpeedTier string

	// Output settings.
	Format     string
	OutputFile string

	// File discovery settings.
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Parallelism; values below 1 run single-threaded.
	Workers int

	// Progress settings.
	ShowProgress bool
	Quiet        bool
}

// FileError records a file that failed; the batch keeps going.
type FileError struct {
	Path string `json:"file"`
	Err  error  `json:"-"`
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

// Result holds the outcome of a batch run.
type Result struct {
	Results     []*pipeline.FileResult
	Errors      []FileError
	Duration    time.Duration
	WorkerCount int
}

// FormatResults renders the batch results in the given format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatResults(r, format)
}

// SaveResults writes the formatted results to a file, or to stdout
// when no output file is set.
func (r *Result) SaveResults(format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("formatting results: %w", err)
	}

	if outputFile == "" {
		if !quiet {
			fmt.Println(output)
		}
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", outputFile, err)
	}
	return nil
}
