package ocr

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/idscan/internal/mempool"
	"github.com/MeKo-Tech/idscan/internal/utils"
)

const (
	enhanceWindow = 11
	enhanceOffset = 2
)

// EnhanceForRetry prepares a low-confidence image for a second OCR pass:
// light blur to suppress sensor noise, then a local adaptive threshold
// to lift faint text off the background. Returns the input unchanged if
// the image cannot be processed.
func EnhanceForRetry(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	blurred := imaging.Blur(img, 0.5)

	plane, w, h, err := utils.GrayPlane(blurred)
	if err != nil {
		return img
	}
	defer mempool.PutUint8(plane)

	out := image.NewGray(image.Rect(0, 0, w, h))
	adaptiveThreshold(plane, out.Pix, w, h, enhanceWindow, enhanceOffset)
	return out
}

// adaptiveThreshold binarizes a grayscale plane against the local mean
// over a window x window neighborhood, using an integral image so the
// pass stays linear in pixel count.
func adaptiveThreshold(plane, dst []uint8, w, h, window, offset int) {
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(plane[y*w+x])
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	half := window / 2
	for y := 0; y < h; y++ {
		y0 := max(0, y-half)
		y1 := min(h-1, y+half)
		for x := 0; x < w; x++ {
			x0 := max(0, x-half)
			x1 := min(w-1, x+half)

			count := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*(w+1)+x1+1] -
				integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] +
				integral[y0*(w+1)+x0]
			mean := sum / count

			if int64(plane[y*w+x]) > mean-int64(offset) {
				dst[y*w+x] = 255
			} else {
				dst[y*w+x] = 0
			}
		}
	}
}
