package segment

import (
	"image"

	"github.com/MeKo-Tech/idscan/internal/utils"
)

// Projection-profile splitting handles the common "front above back"
// and "front beside back" scan layouts that contour detection misses
// when the cards blend into the background.

const projectionConfidence = 0.6

// splitByHorizontalProjection looks for the widest run of near-empty
// rows and splits the page into a top and bottom segment there.
func splitByHorizontalProjection(img image.Image, mask []bool, w, h int) []Segment {
	rowSums := make([]int, h)
	for y := 0; y < h; y++ {
		sum := 0
		for x := 0; x < w; x++ {
			if mask[y*w+x] {
				sum++
			}
		}
		rowSums[y] = sum
	}
	return splitByProfile(img, rowSums, w, h, true)
}

// splitByVerticalProjection is the symmetric column-wise split for
// side-by-side documents.
func splitByVerticalProjection(img image.Image, mask []bool, w, h int) []Segment {
	colSums := make([]int, w)
	for x := 0; x < w; x++ {
		sum := 0
		for y := 0; y < h; y++ {
			if mask[y*w+x] {
				sum++
			}
		}
		colSums[x] = sum
	}
	return splitByProfile(img, colSums, w, h, false)
}

func splitByProfile(img image.Image, sums []int, w, h int, horizontal bool) []Segment {
	peak := 0
	for _, s := range sums {
		if s > peak {
			peak = s
		}
	}
	if peak == 0 {
		return nil
	}

	// Rows/columns below a small fraction of the peak count as gap.
	threshold := 5
	if t := int(0.05 * float64(peak)); t > threshold {
		threshold = t
	}
	gapStart, gapLen := largestLowRun(sums, threshold)
	if gapLen == 0 {
		return nil
	}

	span := h
	if !horizontal {
		span = w
	}
	minGap := 3
	if g := int(0.03 * float64(span)); g > minGap {
		minGap = g
	}
	if gapLen < minGap {
		return nil
	}

	split := gapStart + gapLen/2
	pad := int(0.01 * float64(span))

	var boxes [2]utils.Rect
	if horizontal {
		boxes[0] = utils.NewRect(0, 0, w, max(0, split-pad))
		boxes[1] = utils.NewRect(0, min(h, split+pad), w, h-min(h, split+pad))
	} else {
		boxes[0] = utils.NewRect(0, 0, max(0, split-pad), h)
		boxes[1] = utils.NewRect(min(w, split+pad), 0, w-min(w, split+pad), h)
	}

	var segments []Segment
	for _, box := range boxes {
		if horizontal && box.H <= 10 {
			continue
		}
		if !horizontal && box.W <= 10 {
			continue
		}
		segments = append(segments, Segment{
			Image:      utils.CropRect(img, box),
			Box:        box,
			Confidence: projectionConfidence,
		})
	}
	return segments
}

// largestLowRun returns the start and length of the longest contiguous
// run of values below threshold.
func largestLowRun(sums []int, threshold int) (start, length int) {
	bestStart, bestLen := 0, 0
	runStart, runLen := -1, 0
	for i, s := range sums {
		if s < threshold {
			if runStart < 0 {
				runStart = i
			}
			runLen++
			if runLen > bestLen {
				bestStart, bestLen = runStart, runLen
			}
		} else {
			runStart, runLen = -1, 0
		}
	}
	return bestStart, bestLen
}
