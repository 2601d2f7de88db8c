package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/idscan/internal/pipeline"
)

func formatResults(r *Result, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(r)
	case "csv":
		return formatCSV(r)
	default:
		return formatText(r), nil
	}
}

func formatJSON(r *Result) (string, error) {
	type failed struct {
		File  string `json:"file"`
		Error string `json:"error"`
	}
	payload := struct {
		Files       []*pipeline.FileResult `json:"files"`
		Failed      []failed               `json:"failed,omitempty"`
		DurationMS  int64                  `json:"duration_ms"`
		WorkerCount int                    `json:"workers"`
	}{
		Files:       r.Results,
		DurationMS:  r.Duration.Milliseconds(),
		WorkerCount: r.WorkerCount,
	}
	for _, fe := range r.Errors {
		payload.Failed = append(payload.Failed, failed{File: fe.Path, Error: fe.Err.Error()})
	}

	bts, err := json.MarshalIndent(payload, "", "  ")
	return string(bts), err
}

func formatCSV(r *Result) (string, error) {
	rows := [][]string{{
		"file", "page", "document_type", "document_side", "confidence", "ink_ratio", "ocr_confidence",
	}}

	for _, res := range r.Results {
		if len(res.Classifications) == 0 {
			rows = append(rows, []string{res.Source, "", "unknown", "unknown", "0", "0", "0"})
			continue
		}
		for _, cls := range res.Classifications {
			rows = append(rows, []string{
				res.Source,
				cls.PageLabel,
				cls.Type.String(),
				string(cls.Side),
				strconv.FormatFloat(cls.Confidence, 'f', 1, 64),
				strconv.FormatFloat(cls.Features.InkRatio, 'f', 4, 64),
				strconv.FormatFloat(cls.Features.OCRConfidence, 'f', 1, 64),
			})
		}
	}

	var output strings.Builder
	writer := csv.NewWriter(&output)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return output.String(), writer.Error()
}

func formatText(r *Result) string {
	var b strings.Builder

	for _, res := range r.Results {
		fmt.Fprintf(&b, "%s: %d page(s), %d readable, %d empty, %d document(s)\n",
			res.Source, len(res.Pages), res.ReadablePages(), res.EmptyPages(), res.IdentifiedDocuments())
		for _, cls := range res.Classifications {
			fmt.Fprintf(&b, "  page %-6s %-16s %-8s conf %5.1f\n",
				cls.PageLabel, cls.Type.String(), cls.Side, cls.Confidence)
		}
	}
	for _, fe := range r.Errors {
		fmt.Fprintf(&b, "FAILED %s: %v\n", fe.Path, fe.Err)
	}
	fmt.Fprintf(&b, "processed %d file(s) in %s (%d failed)\n",
		len(r.Results), r.Duration.Round(10*time.Millisecond), len(r.Errors))
	return b.String()
}
