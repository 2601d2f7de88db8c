// Package clarity measures how much visible ink a scanned page carries.
// The ink ratio drives both emptiness detection and downstream quality
// scoring.
package clarity

import (
	"image"

	"github.com/MeKo-Tech/idscan/internal/mempool"
	"github.com/MeKo-Tech/idscan/internal/utils"
)

// InkRatio returns the fraction of page pixels classified as ink,
// in [0, 1]. The page is converted to grayscale and binarized with a
// global Otsu threshold; pixels at or below the threshold count as ink.
// A nil or zero-area image yields 0.
func InkRatio(img image.Image) float64 {
	if img == nil {
		return 0
	}
	plane, w, h, err := utils.GrayPlane(img)
	if err != nil {
		return 0
	}
	defer mempool.PutUint8(plane)
	if w*h == 0 {
		return 0
	}

	threshold := utils.OtsuThreshold(plane)
	ink := 0
	for _, v := range plane {
		if v <= threshold {
			ink++
		}
	}
	return float64(ink) / float64(w*h)
}

// IsPageClear reports whether a page carries enough ink to be worth
// OCR. Pages below minInkRatio are treated as blank separators.
func IsPageClear(img image.Image, minInkRatio float64) bool {
	return InkRatio(img) >= minInkRatio
}
