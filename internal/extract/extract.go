// Package extract turns input files into ordered page images ready for
// quality checks and classification.
package extract

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/idscan/internal/utils"
)

// PageRecord is one page of an input document.
type PageRecord struct {
	// Number is the 1-based page number; records are contiguous.
	Number int
	// Image is the rasterized page, nil for a synthetic placeholder
	// (zero-page PDF or a page whose image could not be recovered).
	Image image.Image
	// Source is the originating file path or name.
	Source string
	// Synthetic marks placeholder records that carry no pixels.
	Synthetic bool
}

// DecodeError reports malformed input. Callers decide the fallback.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Extractor produces PageRecords from PDFs and plain images.
type Extractor struct {
	rasterizer Rasterizer
	logger     *slog.Logger
}

func NewExtractor(rasterizer Rasterizer, logger *slog.Logger) *Extractor {
	if rasterizer == nil {
		rasterizer = NewImageRasterizer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{rasterizer: rasterizer, logger: logger}
}

// ExtractPages loads a file and returns its pages in order. PDFs yield
// one record per page; a zero-page PDF yields a single synthetic
// record so downstream consumers still see the document. Plain images
// yield exactly one record.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]PageRecord, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return e.extractPDF(ctx, path)
	}
	if !utils.IsSupportedImage(path) {
		return nil, &DecodeError{Source: path, Err: fmt.Errorf("unsupported file type %q", ext)}
	}

	img, err := utils.LoadImage(path)
	if err != nil {
		return nil, &DecodeError{Source: path, Err: err}
	}
	return []PageRecord{{Number: 1, Image: img, Source: path}}, nil
}

// ExtractPagesFromBytes is the in-memory variant used by the HTTP
// surface. PDF bytes are staged to a temp file for the rasterizer.
func (e *Extractor) ExtractPagesFromBytes(ctx context.Context, data []byte, name string) ([]PageRecord, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".pdf" {
		tmp, err := os.CreateTemp("", "idscan-upload-*.pdf")
		if err != nil {
			return nil, fmt.Errorf("staging upload: %w", err)
		}
		defer func() {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}()
		if _, err := tmp.Write(data); err != nil {
			return nil, fmt.Errorf("staging upload: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return nil, fmt.Errorf("staging upload: %w", err)
		}

		records, err := e.extractPDF(ctx, tmp.Name())
		for i := range records {
			records[i].Source = name
		}
		return records, err
	}

	img, err := utils.DecodeImage(data)
	if err != nil {
		return nil, &DecodeError{Source: name, Err: err}
	}
	return []PageRecord{{Number: 1, Image: img, Source: name}}, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) ([]PageRecord, error) {
	pageCount, pages, err := e.rasterizer.Rasterize(ctx, path)
	if err != nil {
		return nil, err
	}
	if pageCount == 0 {
		e.logger.Warn("pdf has no pages, emitting synthetic record", "source", path)
		return []PageRecord{{Number: 1, Source: path, Synthetic: true}}, nil
	}

	records := make([]PageRecord, 0, pageCount)
	for num := 1; num <= pageCount; num++ {
		img, ok := pages[num]
		if !ok {
			e.logger.Warn("page has no recoverable image", "source", path, "page", num)
		}
		records = append(records, PageRecord{
			Number:    num,
			Image:     img,
			Source:    path,
			Synthetic: !ok,
		})
	}
	return records, nil
}
