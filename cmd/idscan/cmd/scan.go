package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/idscan/internal/pipeline"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// scanCmd represents the scan command for single-file classification.
var scanCmd = &cobra.Command{
	Use:   "scan [files...]",
	Short: "Classify identity documents in scanned files",
	Long: `Classify the identity documents found in one or more scanned files.

Each page is segmented into individual documents, which are classified
by type and side with a confidence score.

Supported formats: JPEG, PNG, BMP, TIFF, WebP, PDF

Examples:
  idscan scan passport.png
  idscan scan page1.png page2.png --format json
  idscan scan document.pdf --output results.json --speed-tier accurate`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runScanCommand,
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}

	format, _ := cmd.Flags().GetString("format")
	if format != outputFormatText && format != outputFormatJSON {
		return fmt.Errorf("invalid output format: %s (must be text or json)", format)
	}
	outputFile, _ := cmd.Flags().GetString("output")
	tier, _ := cmd.Flags().GetString("speed-tier")

	p, err := pipeline.NewBuilder().
		WithConfig(GetConfig()).
		WithSpeedTier(tier).
		Build()
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	results := make([]*pipeline.FileResult, 0, len(args))
	for _, path := range args {
		result, err := p.ClassifyFile(cmd.Context(), path)
		if err != nil {
			return fmt.Errorf("processing %s: %w", path, err)
		}
		results = append(results, result)
	}

	output, err := renderScanResults(results, format)
	if err != nil {
		return err
	}

	if outputFile != "" {
		return os.WriteFile(outputFile, []byte(output), 0o600)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func renderScanResults(results []*pipeline.FileResult, format string) (string, error) {
	if format == outputFormatJSON {
		bts, err := json.MarshalIndent(results, "", "  ")
		return string(bts), err
	}

	var b strings.Builder
	for _, res := range results {
		fmt.Fprintf(&b, "%s\n", res.Source)
		for _, page := range res.Pages {
			status := "readable"
			switch {
			case page.Empty:
				status = "empty"
			case !page.Readable:
				status = "unreadable"
			}
			fmt.Fprintf(&b, "  page %-3d ink %.4f  ocr %5.1f  lang %-4s %s\n",
				page.Number, page.InkRatio, page.Confidence, page.Language, status)
		}
		for _, cls := range res.Classifications {
			fmt.Fprintf(&b, "  doc  %-6s %-16s %-8s conf %5.1f\n",
				cls.PageLabel, cls.Type.String(), cls.Side, cls.Confidence)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("format", "f", "text", "output format: text, json")
	scanCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	scanCmd.Flags().String("speed-tier", "balanced", "OCR speed tier: superfast, fast, balanced, accurate")
}
