package clarity

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/idscan/internal/utils"
)

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.Set(x, y, c)
		}
	}
}

func TestInkRatio_Bounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	fillRect(img, 0, 0, 100, 100, color.White)
	fillRect(img, 10, 10, 40, 40, color.Black)

	ratio := InkRatio(img)
	assert.GreaterOrEqual(t, ratio, 0.0)
	assert.LessOrEqual(t, ratio, 1.0)
	// The dark square is 9% of the page.
	assert.InDelta(t, 0.09, ratio, 0.02)
}

func TestInkRatio_UniformPages(t *testing.T) {
	white := image.NewRGBA(image.Rect(0, 0, 100, 100))
	fillRect(white, 0, 0, 100, 100, color.White)
	assert.Less(t, InkRatio(white), 0.01)

	black := image.NewRGBA(image.Rect(0, 0, 100, 100))
	fillRect(black, 0, 0, 100, 100, color.Black)
	assert.GreaterOrEqual(t, InkRatio(black), 0.9)
}

func TestInkRatio_Idempotent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	fillRect(img, 0, 0, 100, 100, color.White)
	fillRect(img, 10, 10, 40, 40, color.Black)

	first := InkRatio(img)
	assert.Equal(t, first, InkRatio(img))
}

func TestInkRatio_EncodingInvariance(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	fillRect(img, 0, 0, 100, 100, color.White)
	fillRect(img, 10, 10, 40, 40, color.Black)
	reference := InkRatio(img)

	pngData, err := utils.EncodePNG(img)
	require.NoError(t, err)
	fromPNG, err := utils.DecodeImage(pngData)
	require.NoError(t, err)
	assert.InDelta(t, reference, InkRatio(fromPNG), 0.01)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	fromJPEG, err := utils.DecodeImage(buf.Bytes())
	require.NoError(t, err)
	assert.InDelta(t, reference, InkRatio(fromJPEG), 0.02)
}

func TestInkRatio_DarkerPageScoresHigher(t *testing.T) {
	light := image.NewRGBA(image.Rect(0, 0, 100, 100))
	fillRect(light, 0, 0, 100, 100, color.White)
	fillRect(light, 0, 0, 10, 100, color.Black)

	dark := image.NewRGBA(image.Rect(0, 0, 100, 100))
	fillRect(dark, 0, 0, 100, 100, color.White)
	fillRect(dark, 0, 0, 60, 100, color.Black)

	assert.Greater(t, InkRatio(dark), InkRatio(light))
}

func TestInkRatio_NilImage(t *testing.T) {
	assert.Zero(t, InkRatio(nil))
}

func TestIsPageClear(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	fillRect(img, 0, 0, 50, 50, color.White)
	fillRect(img, 10, 10, 30, 30, color.Black)

	assert.True(t, IsPageClear(img, 0.005))
	assert.False(t, IsPageClear(img, 0.9))
}
