package segment

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/idscan/internal/mempool"
	"github.com/MeKo-Tech/idscan/internal/utils"
)

const (
	edgeMagnitudeThreshold = 100
	edgeConfidence         = 0.9
	// Fraction of the hull perimeter used as the polygon simplification
	// tolerance.
	approxEpsilonFactor = 0.02
)

// segmentByEdges is the last detection fallback: gradient edges, closed
// with dilation, whose simplified outline still has at least four
// corners and card-like geometry.
func (s *Segmenter) segmentByEdges(img image.Image, w, h int) []Segment {
	blurred := imaging.Blur(img, 1.0)
	plane, pw, ph, err := utils.GrayPlane(blurred)
	if err != nil {
		return nil
	}
	defer mempool.PutUint8(plane)

	edges := sobelEdges(plane, pw, ph, edgeMagnitudeThreshold)
	once := dilate(edges, pw, ph, 5)
	mempool.PutBool(edges)
	dilated := dilate(once, pw, ph, 5)
	mempool.PutBool(once)
	defer mempool.PutBool(dilated)

	totalArea := float64(w * h)
	minArea := totalArea * s.cfg.MinAreaPercent / 100
	maxArea := totalArea * s.cfg.MaxAreaPercent / 100

	var segments []Segment
	for _, comp := range connectedComponents(dilated, pw, ph) {
		if float64(comp.count) < minArea || float64(comp.count) > maxArea {
			continue
		}
		box := comp.boundingRect()
		hull := convexHull(maskBoundaryPoints(dilated, pw, ph, box))
		if len(approxPolygon(hull)) < 4 {
			continue
		}
		ratio := box.AspectRatio()
		if ratio <= s.cfg.MinAspectRatio || ratio >= s.cfg.MaxAspectRatio {
			continue
		}

		padded := box.Pad(
			int(float64(box.W)*s.cfg.PaddingPercent/100),
			int(float64(box.H)*s.cfg.PaddingPercent/100),
			w, h,
		)
		segments = append(segments, Segment{
			Image:      utils.CropRect(img, padded),
			Box:        padded,
			Confidence: edgeConfidence,
		})
	}

	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Box.X < segments[j].Box.X })
	return segments
}

// sobelEdges marks pixels whose gradient magnitude exceeds the
// threshold.
func sobelEdges(plane []uint8, w, h, threshold int) []bool {
	out := mempool.GetBool(w * h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			p := func(dx, dy int) int { return int(plane[(y+dy)*w+x+dx]) }
			gx := -p(-1, -1) - 2*p(-1, 0) - p(-1, 1) + p(1, -1) + 2*p(1, 0) + p(1, 1)
			gy := -p(-1, -1) - 2*p(0, -1) - p(1, -1) + p(-1, 1) + 2*p(0, 1) + p(1, 1)
			if gx*gx+gy*gy > threshold*threshold {
				out[y*w+x] = true
			}
		}
	}
	return out
}

// maskBoundaryPoints collects mask pixels inside box that have at least
// one unset 4-neighbor, i.e. the component outline.
func maskBoundaryPoints(mask []bool, w, h int, box utils.Rect) []utils.Point {
	var pts []utils.Point
	for y := box.Y; y < box.Bottom() && y < h; y++ {
		for x := box.X; x < box.Right() && x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			edge := x == 0 || y == 0 || x == w-1 || y == h-1 ||
				!mask[y*w+x-1] || !mask[y*w+x+1] ||
				!mask[(y-1)*w+x] || !mask[(y+1)*w+x]
			if edge {
				pts = append(pts, utils.Point{X: x, Y: y})
			}
		}
	}
	return pts
}

// convexHull computes the hull with the monotone chain algorithm,
// returning vertices in counter-clockwise order.
func convexHull(pts []utils.Point) []utils.Point {
	if len(pts) < 3 {
		return pts
	}
	sorted := make([]utils.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b utils.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var hull []utils.Point
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// approxPolygon simplifies a closed polygon with Douglas-Peucker using
// a tolerance proportional to the perimeter.
func approxPolygon(pts []utils.Point) []utils.Point {
	if len(pts) < 3 {
		return pts
	}
	peri := 0.0
	for i := range pts {
		next := pts[(i+1)%len(pts)]
		peri += math.Hypot(float64(next.X-pts[i].X), float64(next.Y-pts[i].Y))
	}
	eps := approxEpsilonFactor * peri
	return douglasPeucker(pts, eps)
}

func douglasPeucker(pts []utils.Point, eps float64) []utils.Point {
	if len(pts) < 3 {
		return pts
	}
	maxDist := 0.0
	index := 0
	last := len(pts) - 1
	for i := 1; i < last; i++ {
		d := utils.PerpendicularDistance(pts[i], pts[0], pts[last])
		if d > maxDist {
			maxDist = d
			index = i
		}
	}
	if maxDist <= eps {
		return []utils.Point{pts[0], pts[last]}
	}
	left := douglasPeucker(pts[:index+1], eps)
	right := douglasPeucker(pts[index:], eps)
	return append(left[:len(left)-1], right...)
}
