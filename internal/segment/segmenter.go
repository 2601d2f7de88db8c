// Package segment splits a scanned page into one sub-image per physical
// document, tuned for ID-card-like rectangles.
package segment

import (
	"image"
	"log/slog"
	"sort"

	"github.com/MeKo-Tech/idscan/internal/config"
	"github.com/MeKo-Tech/idscan/internal/mempool"
	"github.com/MeKo-Tech/idscan/internal/utils"
)

const (
	closingKernelSize = 5
	// Boxes thinner than this after overlap fixing are discarded.
	minBoxSize = 20
)

// Segment is one detected document region cropped from the page.
type Segment struct {
	Image      image.Image
	Box        utils.Rect
	Confidence float64
}

// Segmenter finds document regions on page images.
type Segmenter struct {
	cfg    config.DetectionConfig
	logger *slog.Logger
}

func NewSegmenter(cfg config.DetectionConfig, logger *slog.Logger) *Segmenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{cfg: cfg, logger: logger}
}

// SegmentPage returns the document segments found on the page, ordered
// left-to-right for contour hits and by reading order for fallback
// splits. When nothing card-like is found the whole page comes back as
// a single full-confidence segment.
func (s *Segmenter) SegmentPage(img image.Image) []Segment {
	if img == nil {
		return nil
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	plane, pw, ph, err := utils.GrayPlane(img)
	if err != nil {
		s.logger.Warn("segmentation grayscale failed", "error", err)
		return []Segment{wholePage(img, w, h)}
	}
	threshold := utils.OtsuThreshold(plane)

	ink := utils.BinarizeInverted(plane, threshold)
	mempool.PutUint8(plane)

	closed := closeMask(cloneMask(ink), pw, ph, closingKernelSize)
	boxes := s.candidateBoxes(closed, pw, ph)
	mempool.PutBool(closed)

	boxes = s.removeOverlapping(boxes)
	sort.SliceStable(boxes, func(i, j int) bool { return boxes[i].X < boxes[j].X })

	segments := make([]Segment, 0, len(boxes))
	for _, box := range boxes {
		padded := box.Pad(
			int(float64(box.W)*s.cfg.PaddingPercent/100),
			int(float64(box.H)*s.cfg.PaddingPercent/100),
			w, h,
		)
		segments = append(segments, Segment{
			Image:      utils.CropRect(img, padded),
			Box:        padded,
			Confidence: 1.0,
		})
	}
	if len(segments) > 1 {
		segments = fixOverlappingBoxes(img, segments, w, h)
	}
	if len(segments) > 0 {
		mempool.PutBool(ink)
		return segments
	}

	// Contour detection found nothing: projection splits handle the
	// stacked and side-by-side layouts, edges catch low-contrast cards.
	if split := splitByHorizontalProjection(img, ink, pw, ph); len(split) > 0 {
		mempool.PutBool(ink)
		return split
	}
	if split := splitByVerticalProjection(img, ink, pw, ph); len(split) > 0 {
		mempool.PutBool(ink)
		return split
	}
	mempool.PutBool(ink)

	if edgeSegments := s.segmentByEdges(img, w, h); len(edgeSegments) > 0 {
		return edgeSegments
	}
	return []Segment{wholePage(img, w, h)}
}

func wholePage(img image.Image, w, h int) Segment {
	return Segment{
		Image:      img,
		Box:        utils.NewRect(0, 0, w, h),
		Confidence: 1.0,
	}
}

// candidateBoxes keeps component bounding boxes whose area share and
// aspect ratio look like a document.
func (s *Segmenter) candidateBoxes(mask []bool, w, h int) []utils.Rect {
	totalArea := float64(w * h)
	minArea := totalArea * s.cfg.MinAreaPercent / 100
	maxArea := totalArea * s.cfg.MaxAreaPercent / 100

	var boxes []utils.Rect
	for _, comp := range connectedComponents(mask, w, h) {
		box := comp.boundingRect()
		area := float64(box.Area())
		if area <= minArea || area >= maxArea {
			continue
		}
		ratio := box.AspectRatio()
		if ratio <= s.cfg.MinAspectRatio || ratio >= s.cfg.MaxAspectRatio {
			continue
		}
		boxes = append(boxes, box)
	}
	return boxes
}

// removeOverlapping greedily keeps boxes in area order, dropping any
// that overlap a kept box too much or touch it directly.
func (s *Segmenter) removeOverlapping(boxes []utils.Rect) []utils.Rect {
	if len(boxes) <= 1 {
		return boxes
	}
	sorted := make([]utils.Rect, len(boxes))
	copy(sorted, boxes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Area() > sorted[j].Area() })

	var kept []utils.Rect
	for _, box := range sorted {
		overlapping := false
		for _, sel := range kept {
			hSep, vSep := utils.Separation(box, sel)
			if utils.IoU(box, sel) > s.cfg.IoUThreshold || (hSep == 0 && vSep == 0) {
				overlapping = true
				break
			}
		}
		if !overlapping {
			kept = append(kept, box)
		}
	}
	return kept
}

// fixOverlappingBoxes makes vertically overlapping segments disjoint by
// splitting each overlap at its midpoint and re-cropping from the
// original page.
func fixOverlappingBoxes(img image.Image, segments []Segment, w, h int) []Segment {
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Box.Y < segments[j].Box.Y })

	boxes := make([]utils.Rect, len(segments))
	for i, seg := range segments {
		boxes[i] = seg.Box
	}
	for i := 0; i < len(boxes)-1; i++ {
		curr, next := boxes[i], boxes[i+1]
		if curr.Bottom() <= next.Y {
			continue
		}
		// Side-by-side boxes share a vertical range but never collide;
		// only split when the horizontal ranges meet too.
		if hSep, _ := utils.Separation(curr, next); hSep > 0 {
			continue
		}
		overlap := curr.Bottom() - next.Y
		split := curr.Y + curr.H - overlap/2
		boxes[i].H = split - curr.Y
		boxes[i+1].H = next.Bottom() - split
		boxes[i+1].Y = split
	}

	result := make([]Segment, 0, len(segments))
	for i, box := range boxes {
		if box.W <= minBoxSize || box.H <= minBoxSize {
			continue
		}
		clamped := box.Clamp(w, h)
		result = append(result, Segment{
			Image:      utils.CropRect(img, clamped),
			Box:        clamped,
			Confidence: segments[i].Confidence,
		})
	}
	return result
}

func cloneMask(mask []bool) []bool {
	out := mempool.GetBool(len(mask))
	copy(out, mask)
	return out
}
