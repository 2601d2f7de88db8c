package ocr

import (
	"context"
	"image"
)

const (
	// Below this many characters a fast-tier extraction is considered
	// too thin and a thorough retry is attempted.
	shortTextThreshold = 30
	// The retry result replaces the fast one only when it is at least
	// this much longer.
	retryGainFactor = 1.5
)

// ExtractText pulls text from a segment image. It starts with the fast
// tier; when that yields under 30 characters, a thorough pass is tried
// and kept only if it recovers at least 50% more text. The returned
// text is cleaned of control characters and collapsed whitespace.
func (e *ConfidenceEngine) ExtractText(ctx context.Context, img image.Image, lang string) (string, Score) {
	fast := e.Measure(ctx, img, TierFast, lang)
	text := CleanText(fast.Text)
	if len(text) >= shortTextThreshold {
		return text, fast
	}

	thorough := e.Measure(ctx, img, TierAccurate, lang)
	retryText := CleanText(thorough.Text)
	if float64(len(retryText)) >= float64(len(text))*retryGainFactor && len(retryText) > len(text) {
		return retryText, thorough
	}
	return text, fast
}
