// Package ocr provides the recognition engine abstraction and the tiered
// confidence scoring built on top of it.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/MeKo-Tech/idscan/internal/utils"
)

// LayoutMode selects the page segmentation strategy for a recognition
// pass.
type LayoutMode int

const (
	// LayoutAuto lets the engine detect the page layout.
	LayoutAuto LayoutMode = iota
	// LayoutSingleColumn assumes a single column of variable-size text.
	LayoutSingleColumn
	// LayoutUniformBlock assumes a single uniform block of text.
	LayoutUniformBlock
	// LayoutSingleLine assumes one line of text.
	LayoutSingleLine
)

func (m LayoutMode) String() string {
	switch m {
	case LayoutAuto:
		return "auto"
	case LayoutSingleColumn:
		return "single-column"
	case LayoutUniformBlock:
		return "uniform-block"
	case LayoutSingleLine:
		return "single-line"
	default:
		return "unknown"
	}
}

// Token is one recognized word with its confidence and position.
type Token struct {
	Text       string
	Confidence float64
	Box        utils.Rect
}

// Request describes a single recognition pass.
type Request struct {
	Image     image.Image
	Language  string
	Layout    LayoutMode
	Whitelist string
}

// Engine runs text recognition over an image. Implementations must be
// safe for concurrent use.
type Engine interface {
	Recognize(ctx context.Context, req Request) ([]Token, error)
	Close() error
}

// ErrEngineUnavailable is returned when no recognition backend can be
// initialized.
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

// RecognitionError wraps a failed recognition pass with its language so
// callers can decide on a fallback.
type RecognitionError struct {
	Language string
	Err      error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("ocr recognition failed (lang=%s): %v", e.Language, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// JoinTokens concatenates token texts with single spaces, skipping
// blank tokens.
func JoinTokens(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if s := strings.TrimSpace(t.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
