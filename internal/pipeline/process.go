package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/MeKo-Tech/idscan/internal/clarity"
	"github.com/MeKo-Tech/idscan/internal/extract"
	"github.com/MeKo-Tech/idscan/internal/identity"
)

// ClassifyFile analyzes a file on disk: every page gets quality
// metrics, and every detected document segment a classification.
func (p *Pipeline) ClassifyFile(ctx context.Context, path string) (*FileResult, error) {
	pages, err := p.extractor.ExtractPages(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	return p.classifyPages(ctx, path, pages)
}

// ClassifyBytes analyzes an in-memory upload. The name decides the
// decoder and labels the result.
func (p *Pipeline) ClassifyBytes(ctx context.Context, data []byte, name string) (*FileResult, error) {
	pages, err := p.extractor.ExtractPagesFromBytes(ctx, data, name)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", name, err)
	}
	return p.classifyPages(ctx, name, pages)
}

func (p *Pipeline) classifyPages(ctx context.Context, source string, pages []extract.PageRecord) (*FileResult, error) {
	start := time.Now()

	result := &FileResult{Source: source}
	var classifications []identity.Classification

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageResult, pageClassifications := p.processPage(ctx, page)
		result.Pages = append(result.Pages, pageResult)
		classifications = append(classifications, pageClassifications...)
	}

	// Cross-document adjustment, then pairwise correction. Both are
	// pure passes over the per-segment records.
	table := identity.BuildFrequencyTable(p.cfg, classifications)
	classifications = identity.Adjust(p.cfg.Boost, table, classifications)
	classifications = identity.Correct(classifications)

	result.Classifications = classifications
	result.Elapsed = time.Since(start)
	result.ElapsedMS = result.Elapsed.Milliseconds()

	p.logger.Info("file analyzed",
		"source", source,
		"pages", len(result.Pages),
		"documents", result.IdentifiedDocuments(),
		"elapsed", result.Elapsed)
	return result, nil
}

func (p *Pipeline) processPage(ctx context.Context, page extract.PageRecord) (PageResult, []identity.Classification) {
	label := fmt.Sprintf("%d", page.Number)

	if page.Image == nil {
		// Synthetic placeholder: no pixels, no content.
		return PageResult{
			Number:    page.Number,
			Language:  p.cfg.Languages.Primary,
			Empty:     true,
			Synthetic: true,
		}, []identity.Classification{p.classifier.Classify(label, "", 0, 0)}
	}

	ctx, cancel := p.ocrContext(ctx)
	defer cancel()

	ink := clarity.InkRatio(page.Image)

	score := p.confidence.Measure(ctx, page.Image, p.tier, p.cfg.OCR.Language)
	language := p.languages.Detect(score.Text)
	if language != score.Language {
		// Re-run in the detected language; keyword evidence beats the
		// configured default.
		rescored := p.confidence.Measure(ctx, page.Image, p.tier, language)
		if rescored.Confidence > 0 {
			score = rescored
		}
	}

	pageResult := PageResult{
		Number:     page.Number,
		InkRatio:   ink,
		Confidence: score.Confidence,
		Language:   language,
		Text:       score.Text,
		Empty:      ink < p.cfg.Quality.EmptinessInkRatio,
		Readable:   score.Confidence >= p.cfg.Quality.ReadabilityConfidence,
	}

	segments := p.segmenter.SegmentPage(page.Image)
	pageResult.SegmentCount = len(segments)

	classifications := make([]identity.Classification, 0, len(segments))
	for i, seg := range segments {
		segLabel := label
		if len(segments) > 1 {
			segLabel = fmt.Sprintf("%d-%d", page.Number, i+1)
		}
		classifications = append(classifications, p.classifySegment(ctx, segLabel, language, seg.Image))
	}

	p.logger.Debug("page processed",
		"page", page.Number,
		"ink_ratio", ink,
		"confidence", score.Confidence,
		"language", language,
		"segments", len(segments))
	return pageResult, classifications
}

func (p *Pipeline) classifySegment(ctx context.Context, label, language string, img image.Image) identity.Classification {
	ink := clarity.InkRatio(img)
	text, score := p.confidence.ExtractText(ctx, img, language)
	return p.classifier.Classify(label, text, ink, score.Confidence)
}

// ocrContext caps OCR work per page with the configured timeout.
func (p *Pipeline) ocrContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.OCR.TimeoutSec <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(p.cfg.OCR.TimeoutSec)*time.Second)
}
