package utils

import (
	"image"
	"math"
)

// Rect is an axis-aligned bounding box in source-page pixel coordinates,
// expressed as origin plus size.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// NewRect constructs a Rect, normalizing negative sizes to zero.
func NewRect(x, y, w, h int) Rect {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Rect{X: x, Y: y, W: w, H: h}
}

// Area returns the rectangle area in pixels.
func (r Rect) Area() int { return r.W * r.H }

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Empty reports whether the rectangle has zero area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// AspectRatio returns width/height, or 0 for a zero-height rect.
func (r Rect) AspectRatio() float64 {
	if r.H <= 0 {
		return 0
	}
	return float64(r.W) / float64(r.H)
}

// ToImageRect converts to an image.Rectangle.
func (r Rect) ToImageRect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Intersect returns the intersection of two rects (possibly empty).
func (r Rect) Intersect(o Rect) Rect {
	x1 := maxInt(r.X, o.X)
	y1 := maxInt(r.Y, o.Y)
	x2 := minInt(r.Right(), o.Right())
	y2 := minInt(r.Bottom(), o.Bottom())
	return NewRect(x1, y1, x2-x1, y2-y1)
}

// IoU computes intersection-over-union of two rects.
func IoU(a, b Rect) float64 {
	inter := a.Intersect(b).Area()
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Separation returns the horizontal and vertical gaps between two rects.
// A gap of zero on both axes means the rects touch or overlap.
func Separation(a, b Rect) (hSep, vSep int) {
	switch {
	case a.Right() < b.X:
		hSep = b.X - a.Right()
	case b.Right() < a.X:
		hSep = a.X - b.Right()
	}
	switch {
	case a.Bottom() < b.Y:
		vSep = b.Y - a.Bottom()
	case b.Bottom() < a.Y:
		vSep = a.Y - b.Bottom()
	}
	return hSep, vSep
}

// Pad grows the rect by padX/padY on each side, clamped to the given
// bounds.
func (r Rect) Pad(padX, padY, boundW, boundH int) Rect {
	x1 := clampInt(r.X-padX, 0, boundW)
	y1 := clampInt(r.Y-padY, 0, boundH)
	x2 := clampInt(r.Right()+padX, 0, boundW)
	y2 := clampInt(r.Bottom()+padY, 0, boundH)
	return NewRect(x1, y1, x2-x1, y2-y1)
}

// Clamp restricts the rect to [0, boundW) x [0, boundH).
func (r Rect) Clamp(boundW, boundH int) Rect {
	x1 := clampInt(r.X, 0, boundW)
	y1 := clampInt(r.Y, 0, boundH)
	x2 := clampInt(r.Right(), 0, boundW)
	y2 := clampInt(r.Bottom(), 0, boundH)
	return NewRect(x1, y1, x2-x1, y2-y1)
}

// Point represents a 2D pixel coordinate.
type Point struct {
	X int
	Y int
}

// BoundingRect returns the axis-aligned bounding rect for a set of points.
func BoundingRect(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX = minInt(minX, p.X)
		minY = minInt(minY, p.Y)
		maxX = maxInt(maxX, p.X)
		maxY = maxInt(maxY, p.Y)
	}
	return NewRect(minX, minY, maxX-minX+1, maxY-minY+1)
}

// PerpendicularDistance returns the distance from p to the line (a, b).
func PerpendicularDistance(p, a, b Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return math.Hypot(float64(p.X-a.X), float64(p.Y-a.Y))
	}
	return math.Abs(dy*float64(p.X)-dx*float64(p.Y)+float64(b.X*a.Y)-float64(b.Y*a.X)) / length
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
