package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRect_NormalizesNegatives(t *testing.T) {
	r := NewRect(10, 10, -5, -5)
	assert.Equal(t, 10, r.X)
	assert.Equal(t, 10, r.Y)
	assert.Zero(t, r.W)
	assert.Zero(t, r.H)
	assert.True(t, r.Empty())
}

func TestRect_IoU(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 5, Y: 5, W: 10, H: 10}

	iou := IoU(a, b)
	assert.InDelta(t, 25.0/175.0, iou, 1e-9)

	// Identical rects overlap fully.
	assert.InDelta(t, 1.0, IoU(a, a), 1e-9)

	// Disjoint rects do not overlap.
	c := Rect{X: 100, Y: 100, W: 10, H: 10}
	assert.Zero(t, IoU(a, c))
}

func TestRect_Separation(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 15, Y: 0, W: 10, H: 10}

	hSep, vSep := Separation(a, b)
	assert.Equal(t, 5, hSep)
	assert.Equal(t, 0, vSep)

	// Touching rects report zero separation on both axes.
	c := Rect{X: 10, Y: 0, W: 10, H: 10}
	hSep, vSep = Separation(a, c)
	assert.Equal(t, 0, hSep)
	assert.Equal(t, 0, vSep)
}

func TestRect_Pad(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 20, H: 20}
	padded := r.Pad(5, 5, 100, 100)
	assert.Equal(t, Rect{X: 5, Y: 5, W: 30, H: 30}, padded)

	// Padding clamps against the image bounds.
	edge := Rect{X: 0, Y: 0, W: 20, H: 20}
	padded = edge.Pad(5, 5, 100, 100)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 25, H: 25}, padded)
}

func TestRect_AspectRatio(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 160, H: 100}
	assert.InDelta(t, 1.6, r.AspectRatio(), 1e-9)

	// Zero-height rects report zero instead of dividing by zero.
	assert.Zero(t, Rect{W: 10}.AspectRatio())
}

func TestBoundingRect(t *testing.T) {
	pts := []Point{{X: 5, Y: 8}, {X: 1, Y: 2}, {X: 9, Y: 4}}
	r := BoundingRect(pts)
	assert.Equal(t, Rect{X: 1, Y: 2, W: 9, H: 7}, r)

	assert.True(t, BoundingRect(nil).Empty())
}
