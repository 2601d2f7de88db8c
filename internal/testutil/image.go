// Package testutil generates synthetic scanned pages for tests.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/idscan/internal/utils"
)

// Card describes a card-shaped region drawn onto a page.
type Card struct {
	Box  utils.Rect
	Text string
	Fill color.Color
}

// NewPage creates a white page of the given size.
func NewPage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// DrawCard fills the card's box and renders its text line by line.
func DrawCard(page *image.RGBA, card Card) {
	fill := card.Fill
	if fill == nil {
		fill = color.RGBA{210, 210, 210, 255}
	}
	draw.Draw(page, card.Box.ToImageRect(), image.NewUniform(fill), image.Point{}, draw.Src)
	if card.Text != "" {
		DrawText(page, card.Text, card.Box.X+8, card.Box.Y+20)
	}
}

// Page composes a white page with the given cards.
func Page(width, height int, cards ...Card) *image.RGBA {
	page := NewPage(width, height)
	for _, card := range cards {
		DrawCard(page, card)
	}
	return page
}

// DrawText renders a single line of text at the given baseline origin.
func DrawText(dst *image.RGBA, text string, x, y int) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

// AddNoise flips random pixels toward gray; ratio is the fraction of
// pixels disturbed.
func AddNoise(img *image.RGBA, ratio float64, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	for i := 0; i < int(float64(total)*ratio); i++ {
		x := bounds.Min.X + rng.Intn(bounds.Dx())
		y := bounds.Min.Y + rng.Intn(bounds.Dy())
		v := uint8(rng.Intn(256))
		img.Set(x, y, color.RGBA{v, v, v, 255})
	}
}

// SavePNG writes the image under dir and returns the path.
func SavePNG(t *testing.T, img image.Image, dir, name string) string {
	t.Helper()
	data, err := utils.EncodePNG(img)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
