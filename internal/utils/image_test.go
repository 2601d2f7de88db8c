package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/idscan/internal/mempool"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestGrayPlane(t *testing.T) {
	img := solidImage(4, 3, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	plane, w, h, err := GrayPlane(img)
	require.NoError(t, err)
	defer mempool.PutUint8(plane)

	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)
	for i := range w * h {
		assert.Equal(t, uint8(255), plane[i])
	}
}

func TestGrayPlane_NilImage(t *testing.T) {
	_, _, _, err := GrayPlane(nil)
	require.Error(t, err)

	var procErr *ImageProcessingError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "grayscale", procErr.Operation)
}

func TestOtsuThreshold_Bimodal(t *testing.T) {
	// Half dark, half bright: the threshold must fall between the modes.
	plane := make([]uint8, 200)
	for i := range 100 {
		plane[i] = 20
	}
	for i := 100; i < 200; i++ {
		plane[i] = 230
	}

	thr := OtsuThreshold(plane)
	assert.GreaterOrEqual(t, thr, uint8(20))
	assert.Less(t, thr, uint8(230))
}

func TestOtsuThreshold_Empty(t *testing.T) {
	assert.Zero(t, OtsuThreshold(nil))
}

func TestBinarizeInverted(t *testing.T) {
	plane := []uint8{0, 100, 101, 255}
	mask := BinarizeInverted(plane, 100)
	defer mempool.PutBool(mask)

	assert.True(t, mask[0])
	assert.True(t, mask[1])
	assert.False(t, mask[2])
	assert.False(t, mask[3])
}

func TestDownscaleToFit(t *testing.T) {
	img := solidImage(800, 600, color.White)

	small := DownscaleToFit(img, 400, 400)
	assert.LessOrEqual(t, small.Bounds().Dx(), 400)
	assert.LessOrEqual(t, small.Bounds().Dy(), 400)

	// Images already within bounds are not upscaled.
	same := DownscaleToFit(img, 1000, 1000)
	assert.Equal(t, img.Bounds(), same.Bounds())
}

func TestCropRect_ClampsToBounds(t *testing.T) {
	img := solidImage(100, 100, color.White)
	cropped := CropRect(img, Rect{X: 80, Y: 80, W: 50, H: 50})
	assert.Equal(t, 20, cropped.Bounds().Dx())
	assert.Equal(t, 20, cropped.Bounds().Dy())
}

func TestIsSupportedImage(t *testing.T) {
	assert.True(t, IsSupportedImage("scan.jpg"))
	assert.True(t, IsSupportedImage("scan.PNG"))
	assert.True(t, IsSupportedImage("dir/scan.tiff"))
	assert.False(t, IsSupportedImage("scan.pdf"))
	assert.False(t, IsSupportedImage("scan"))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	img := solidImage(10, 10, color.RGBA{R: 10, G: 200, B: 30, A: 255})
	data, err := EncodePNG(img)
	require.NoError(t, err)

	decoded, err := DecodeImage(data)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}
