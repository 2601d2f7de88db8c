package utils

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/idscan/internal/mempool"
)

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// GrayPlane extracts an 8-bit grayscale plane from an image. The returned
// buffer comes from the mempool; the caller must release it via
// mempool.PutUint8 when done.
func GrayPlane(img image.Image) (plane []uint8, w, h int, err error) {
	if img == nil {
		return nil, 0, 0, &ImageProcessingError{Operation: "grayscale", Err: errors.New("input image is nil")}
	}
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	w = bounds.Dx()
	h = bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, 0, 0, &ImageProcessingError{Operation: "grayscale", Err: errors.New("invalid image dimensions")}
	}

	plane = mempool.GetUint8(w * h)
	// imaging.Grayscale returns NRGBA with R=G=B; read the red channel.
	for y := range h {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w*4]
		for x := range w {
			plane[y*w+x] = row[x*4]
		}
	}
	return plane, w, h, nil
}

// OtsuThreshold computes the global Otsu threshold for a grayscale plane.
// Returns 0 for an empty plane.
func OtsuThreshold(plane []uint8) uint8 {
	if len(plane) == 0 {
		return 0
	}

	var hist [256]int
	for _, v := range plane {
		hist[v]++
	}

	total := len(plane)
	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB float64
	var maxVariance float64
	var threshold uint8
	for i := range 256 {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		variance := wB * wF * (mB - mF) * (mB - mF)
		if variance > maxVariance {
			maxVariance = variance
			threshold = uint8(i) //nolint:gosec // G115: i is always in [0, 255]
		}
	}
	return threshold
}

// BinarizeInverted thresholds a grayscale plane so that dark pixels
// (ink) become true. The returned mask comes from the mempool; release
// it via mempool.PutBool.
func BinarizeInverted(plane []uint8, threshold uint8) []bool {
	mask := mempool.GetBool(len(plane))
	for i, v := range plane {
		if v <= threshold {
			mask[i] = true
		}
	}
	return mask
}

// DownscaleToFit resizes an image to fit within maxW x maxH while
// preserving aspect ratio. Images already within bounds are returned
// unchanged; upscaling never happens.
func DownscaleToFit(img image.Image, maxW, maxH int) image.Image {
	if img == nil || maxW <= 0 || maxH <= 0 {
		return img
	}
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= maxW && h <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

// CropRect crops an image to the given rect, clamped to the image bounds.
func CropRect(img image.Image, r Rect) image.Image {
	rect := r.ToImageRect().Intersect(img.Bounds())
	if rect.Empty() {
		return imaging.New(0, 0, color.Transparent)
	}
	return imaging.Crop(img, rect)
}

// DrawRect draws an axis-aligned rectangle outline into dst. Used for
// segment overlay output.
func DrawRect(dst *image.RGBA, rect image.Rectangle, col color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	for t := range thickness {
		yTop := rect.Min.Y + t
		yBot := rect.Max.Y - 1 - t
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.Set(x, yTop, col)
			dst.Set(x, yBot, col)
		}
	}
	for t := range thickness {
		xLeft := rect.Min.X + t
		xRight := rect.Max.X - 1 - t
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			dst.Set(xLeft, y, col)
			dst.Set(xRight, y, col)
		}
	}
}
