package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/idscan/internal/config"
	"github.com/MeKo-Tech/idscan/internal/extract"
	"github.com/MeKo-Tech/idscan/internal/identity"
	"github.com/MeKo-Tech/idscan/internal/ocr"
	"github.com/MeKo-Tech/idscan/internal/segment"
)

// Pipeline runs the full document analysis: page extraction, quality
// metrics, segmentation, identity classification and the two
// post-processing passes.
type Pipeline struct {
	cfg        *config.Config
	engine     ocr.Engine
	confidence *ocr.ConfidenceEngine
	languages  *ocr.LanguageDetector
	extractor  *extract.Extractor
	segmenter  *segment.Segmenter
	classifier *identity.Classifier
	tier       ocr.SpeedTier
	logger     *slog.Logger
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg        *config.Config
	engine     ocr.Engine
	rasterizer extract.Rasterizer
	tier       ocr.SpeedTier
	logger     *slog.Logger
}

// NewBuilder creates a pipeline builder with default configuration.
func NewBuilder() *Builder {
	cfg := config.DefaultConfig()
	return &Builder{
		cfg:  &cfg,
		tier: ocr.TierBalanced,
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	if cfg != nil {
		b.cfg = cfg
	}
	return b
}

// WithEngine injects an OCR engine, replacing the default Tesseract
// engine. Tests use this to supply a fake.
func (b *Builder) WithEngine(engine ocr.Engine) *Builder {
	b.engine = engine
	return b
}

// WithRasterizer injects a PDF rasterizer.
func (b *Builder) WithRasterizer(r extract.Rasterizer) *Builder {
	b.rasterizer = r
	return b
}

// WithSpeedTier selects the OCR confidence tier by name.
func (b *Builder) WithSpeedTier(name string) *Builder {
	b.tier = ocr.ParseSpeedTier(name)
	return b
}

// WithLogger sets the structured logger for all components.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	engine := b.engine
	if engine == nil {
		engine = ocr.NewTesseractEngine()
	}
	rasterizer := b.rasterizer
	if rasterizer == nil {
		rasterizer = extract.NewImageRasterizer()
	}

	return &Pipeline{
		cfg:        b.cfg,
		engine:     engine,
		confidence: ocr.NewConfidenceEngine(engine, b.cfg.OCR.FallbackLanguage, logger),
		languages:  ocr.NewLanguageDetector(b.cfg.Languages.Primary, b.cfg.Languages.Keywords),
		extractor:  extract.NewExtractor(rasterizer, logger),
		segmenter:  segment.NewSegmenter(b.cfg.Detection, logger),
		classifier: identity.NewClassifier(b.cfg),
		tier:       b.tier,
		logger:     logger,
	}, nil
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() *config.Config { return p.cfg }

// Close releases the OCR engine.
func (p *Pipeline) Close() error {
	if p == nil || p.engine == nil {
		return nil
	}
	return p.engine.Close()
}
