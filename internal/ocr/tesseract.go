package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/MeKo-Tech/idscan/internal/utils"
)

// TesseractEngine runs recognition through the gosseract client. Each
// call uses a fresh client, so the engine is safe for concurrent use.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

// Recognize runs a single OCR pass and returns word-level tokens.
func (e *TesseractEngine) Recognize(ctx context.Context, req Request) ([]Token, error) {
	if req.Image == nil {
		return nil, &RecognitionError{Language: req.Language, Err: fmt.Errorf("nil image")}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		tokens []Token
		err    error
	}
	done := make(chan result, 1)
	go func() {
		tokens, err := e.recognize(req)
		done <- result{tokens: tokens, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.tokens, res.err
	}
}

func (e *TesseractEngine) recognize(req Request) ([]Token, error) {
	c := e.clientFactory()
	defer c.Close()

	data, err := utils.EncodePNG(req.Image)
	if err != nil {
		return nil, &RecognitionError{Language: req.Language, Err: err}
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return nil, &RecognitionError{Language: req.Language, Err: fmt.Errorf("set image: %w", err)}
	}
	if req.Language != "" {
		if err := c.SetLanguage(req.Language); err != nil {
			return nil, &RecognitionError{Language: req.Language, Err: fmt.Errorf("set language: %w", err)}
		}
	}
	if err := c.SetPageSegMode(pageSegMode(req.Layout)); err != nil {
		return nil, &RecognitionError{Language: req.Language, Err: fmt.Errorf("set page seg mode: %w", err)}
	}
	if req.Whitelist != "" {
		if err := c.SetWhitelist(req.Whitelist); err != nil {
			return nil, &RecognitionError{Language: req.Language, Err: fmt.Errorf("set whitelist: %w", err)}
		}
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, &RecognitionError{Language: req.Language, Err: fmt.Errorf("get bounding boxes: %w", err)}
	}

	tokens := make([]Token, 0, len(boxes))
	for _, b := range boxes {
		tokens = append(tokens, Token{
			Text:       strings.TrimRight(b.Word, "\n"),
			Confidence: b.Confidence,
			Box: utils.NewRect(
				b.Box.Min.X, b.Box.Min.Y,
				b.Box.Dx(), b.Box.Dy(),
			),
		})
	}
	return tokens, nil
}

// Close is a no-op; clients are per-call.
func (e *TesseractEngine) Close() error { return nil }

func pageSegMode(m LayoutMode) gosseract.PageSegMode {
	switch m {
	case LayoutSingleColumn:
		return gosseract.PSM_SINGLE_COLUMN
	case LayoutUniformBlock:
		return gosseract.PSM_SINGLE_BLOCK
	case LayoutSingleLine:
		return gosseract.PSM_SINGLE_LINE
	case LayoutAuto:
		return gosseract.PSM_AUTO
	default:
		return gosseract.PSM_AUTO
	}
}
