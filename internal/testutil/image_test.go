package testutil

import (
	"image/color"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/idscan/internal/utils"
)

func TestPageComposition(t *testing.T) {
	page := Page(200, 300, Card{Box: utils.NewRect(20, 40, 160, 100), Fill: color.RGBA{50, 50, 50, 255}})

	r, g, b, _ := page.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)

	r, _, _, _ = page.At(100, 90).RGBA()
	assert.Less(t, r, uint32(0x8000))
}

func TestDrawTextMarksPixels(t *testing.T) {
	page := NewPage(200, 60)
	DrawText(page, "SURNAME ROSSI", 10, 30)

	dark := 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 200; x++ {
			if r, _, _, _ := page.At(x, y).RGBA(); r < 0x8000 {
				dark++
			}
		}
	}
	assert.Positive(t, dark)
}

func TestAddNoiseIsDeterministic(t *testing.T) {
	a := NewPage(50, 50)
	b := NewPage(50, 50)
	AddNoise(a, 0.1, 42)
	AddNoise(b, 0.1, 42)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestSavePNG(t *testing.T) {
	dir := t.TempDir()
	path := SavePNG(t, NewPage(10, 10), dir, "page.png")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
